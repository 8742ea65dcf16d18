package http

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"github.com/rosterhq/roster-backend/internal/user/domain"
)

type UserGetDTO struct {
	ID           int64             `json:"id"`
	Username     string            `json:"username"`
	Birthday     *time.Time        `json:"birthday"`
	CreationDate time.Time         `json:"creationDate"`
	Status       domain.UserStatus `json:"status"`
}

type UserPostDTO struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Birthday *time.Time `json:"birthday"`
}

type CurrentUserDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toUserGetDTO(u domain.User) (UserGetDTO, error) {
	var dto UserGetDTO
	if err := copier.Copy(&dto, &u); err != nil {
		return UserGetDTO{}, fmt.Errorf("failed to map user: %w", err)
	}
	return dto, nil
}

func toUserGetDTOs(users []domain.User) ([]UserGetDTO, error) {
	dtos := make([]UserGetDTO, 0, len(users))
	for _, u := range users {
		dto, err := toUserGetDTO(u)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

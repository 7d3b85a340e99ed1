package database

import (
	"context"
	"errors"
)

const UserCollectionName = "users"

var (
	ErrUserNotFound  = errors.New("user does not exist")
	ErrUserIDInvalid = errors.New("user_id must be positive")
)

// User is the subset of the account record the gateway reads.
type User struct {
	UserID int    `bson:"user_id" gorm:"column:user_id;primaryKey"`
	Name   string `bson:"name" gorm:"column:name;not null"`
}

func (User) TableName() string {
	return UserCollectionName
}

type UserStore interface {
	GetUserName(ctx context.Context, userID int) (string, error)
}

package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

type Repository[T any] interface {
	Create(ctx context.Context, collectionName string, id string, entity T) (T, error)
	Upsert(ctx context.Context, collectionName string, id string, entity T) (T, error)
	Delete(ctx context.Context, collectionName string, id string) error
	FindByID(ctx context.Context, collectionName string, id string) (T, error)
	FindAll(ctx context.Context, collectionName string) ([]T, error)
}

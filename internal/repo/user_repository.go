package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/divverma2003/chat-with-me/internal/db"
	"github.com/divverma2003/chat-with-me/internal/model"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

const userOpTimeout = 5 * time.Second

// UserRepository is the credential-store side of the system: user documents,
// lookups by email/id, and the verification lifecycle.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAllExcept(ctx context.Context, id string) ([]model.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error)
	SetVerified(ctx context.Context, id string) error
	SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	mongoRepo *db.Repository[model.User]
}

// NewUserRepository creates a Mongo-backed UserRepository.
func NewUserRepository(repo *db.Repository[model.User]) UserRepository {
	return &userRepository{mongoRepo: repo}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.mongoRepo.Create(ctx, *user)
	if err != nil {
		return nil, err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("email", email).Build())
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (r *userRepository) FindAllExcept(ctx context.Context, id string) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return r.mongoRepo.FindAll(ctx, db.NewFilter().Ne("_id", objectID).Build())
}

func (r *userRepository) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("verification_token", token).
		Gt("verification_token_expires", time.Now()).
		Build()
	user, err := r.mongoRepo.FindOne(ctx, filter)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	return r.mongoRepo.Exists(ctx, db.NewFilter().Eq("email", email).Build())
}

func (r *userRepository) UpdateProfilePic(ctx context.Context, id, url string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	update := bson.M{"profile_pic": url, "updated_at": time.Now()}
	if _, err := r.mongoRepo.UpdateByID(ctx, id, update); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) SetVerified(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	update := bson.M{
		"is_verified":                true,
		"verification_token":         "",
		"verification_token_expires": nil,
		"updated_at":                 time.Now(),
	}
	_, err := r.mongoRepo.UpdateByID(ctx, id, update)
	return err
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	update := bson.M{
		"verification_token":         token,
		"verification_token_expires": expires,
		"updated_at":                 time.Now(),
	}
	_, err := r.mongoRepo.UpdateByID(ctx, id, update)
	return err
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, userOpTimeout)
	defer cancel()

	_, err := r.mongoRepo.DeleteByID(ctx, id)
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

package usecase

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"

	"ytpm/domain/dto"
	"ytpm/domain/model"
	"ytpm/domain/repository"
	"ytpm/infrastructure/logger"
)

type IUserUsecase interface {
	Login(ctx context.Context, req dto.LoginRequest) dto.Res
	Register(ctx context.Context, req dto.RegisterRequest) dto.Res
}

type UserUsecase struct {
	userRepository repository.IUser
}

func NewUserUsecase(userRepository repository.IUser) IUserUsecase {
	return &UserUsecase{userRepository: userRepository}
}

func hashPassword(password string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(password)))
}

func (u *UserUsecase) Login(ctx context.Context, req dto.LoginRequest) dto.Res {
	var res dto.Res
	user, err := u.userRepository.GetByUserName(ctx, req.UserName)
	if err != nil || user.Password != hashPassword(req.Password) {
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid username or password"
		return res
	}

	token, err := issueToken(user)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to sign token")
		res.ResponseCode = "500"
		res.ResponseMessage = "Failed to issue token"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "OK"
	res.Data = dto.LoginResponse{Token: token}
	return res
}

func (u *UserUsecase) Register(ctx context.Context, req dto.RegisterRequest) dto.Res {
	var res dto.Res
	if _, err := u.userRepository.GetByUserName(ctx, req.UserName); err == nil {
		res.ResponseCode = "409"
		res.ResponseMessage = "Username already taken"
		return res
	}

	user := model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: hashPassword(req.Password),
	}
	if err := u.userRepository.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to create user")
		res.ResponseCode = "500"
		res.ResponseMessage = "Failed to create user"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "OK"
	return res
}

// issueToken signs a 24h JWT whose issuer is the numeric user id.
func issueToken(user model.User) (string, error) {
	claims := model.UserClaims{
		UserName: user.UserName,
		StandardClaims: jwt.StandardClaims{
			Issuer:    strconv.Itoa(user.ID),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("SECRET_KEY")))
}

package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/vision-analyzer/internal/model"
)

func handleError(err error) error {
	if _, ok := status.FromError(err); ok && err != nil {
		return err
	}

	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthenticated")
	case errors.Is(err, model.ErrUnavailable):
		return status.Error(codes.Unavailable, "entitlement store unavailable")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, user ID, duration, and any error codes/messages.
// Place it inside the auth interceptor so the user ID is known.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			userID := GetUserID(ctx) // empty on public procedures

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err == nil {
				logger.Info("RPC ok",
					"procedure", procedure,
					"user_id", userID,
					"duration_ms", duration,
				)
				return resp, nil
			}

			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				logger.Error("RPC error",
					"procedure", procedure,
					"error", err,
					"user_id", userID,
					"duration_ms", duration,
				)
				return resp, err
			}
			level := slog.LevelWarn
			switch connectErr.Code() {
			case connect.CodeInternal, connect.CodeAborted, connect.CodeUnavailable, connect.CodeUnknown:
				level = slog.LevelError
			}
			logger.Log(ctx, level, "RPC error",
				"procedure", procedure,
				"code", connectErr.Code().String(),
				"error", connectErr.Message(),
				"user_id", userID,
				"duration_ms", duration,
			)
			return resp, err
		}
	}
}

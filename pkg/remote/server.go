package remote

import (
	"context"
	"net"
	"net/http"
	"net/rpc"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Mux exposes svc over net/rpc (at rpc.DefaultRPCPath) and the HTTP handlers.
func Mux(svc *Service, logger *zap.Logger) (http.Handler, error) {
	rs := rpc.NewServer()
	if err := rs.RegisterName("Service", svc); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, rs)
	mux.Handle("/", NewHandler(svc, logger))
	return mux, nil
}

func Proxy(svc *Service, srv *http.Server, logger *zap.Logger, lifecycle fx.Lifecycle) error {
	handler, err := Mux(svc, logger)
	if err != nil {
		return err
	}
	srv.Handler = handler

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.With(zap.String("addr", ln.Addr().String())).Info("listening")
			go func() {
				if err := srv.Serve(ln); err != http.ErrServerClosed {
					logger.With(zap.Error(err)).Fatal("serve failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

package cmd

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"staycation/routes"
)

func serveCmd() *cobra.Command {
	var withCron bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(true)
			if err != nil {
				return err
			}
			defer rt.close()
			if cmd.Flags().Changed("cron") {
				rt.cfg.Cron.Enabled = withCron
			}
			return serve(rt)
		},
	}
	cmd.Flags().BoolVar(&withCron, "cron", false, "run the booking sweeps in process (overrides CRON_ENABLED)")
	return cmd
}

func serve(rt *runtime) error {
	svc, err := routes.NewServices(routes.Dependencies{
		DB:         rt.db,
		Redis:      rt.rdb,
		Cloudinary: rt.cld,
		Config:     rt.cfg,
		Log:        rt.log,
	})
	if err != nil {
		return err
	}
	router := routes.NewRouter(rt.cfg, svc, rt.log)

	g := &run.Group{}

	httpSrv := &http.Server{
		Addr:              ":" + rt.cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Add(func() error {
		rt.log.Info("starting HTTP server", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			rt.log.Error("failed to stop web server", zap.Error(err))
		}
	})

	if rt.cfg.Cron.Enabled {
		scheduler, err := svc.Cron.Scheduler(rt.cfg.Cron)
		if err != nil {
			return err
		}
		done := make(chan struct{})
		g.Add(func() error {
			rt.log.Info("starting booking sweeps",
				zap.String("cancel", rt.cfg.Cron.CancelSpec),
				zap.String("reminders", rt.cfg.Cron.ReminderSpec),
				zap.String("complete", rt.cfg.Cron.CompleteSpec))
			scheduler.Start()
			<-done
			return nil
		}, func(error) {
			<-scheduler.Stop().Done()
			close(done)
		})
	}

	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))

	var sig run.SignalError
	if err := g.Run(); err != nil && !errors.As(err, &sig) {
		return err
	}
	rt.log.Info("server stopped")
	return nil
}

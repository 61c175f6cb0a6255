package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"staycation/routes"
	"staycation/services"
)

func sweepCmd() *cobra.Command {
	var jobs []string
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the booking sweeps once, for external schedulers",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer rt.close()

			svc, err := routes.NewServices(routes.Dependencies{DB: rt.db, Config: rt.cfg, Log: rt.log})
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			sweeps := map[string]func(context.Context) (*services.SweepResult, error){
				services.JobCancelExpired: svc.Cron.CancelExpired,
				services.JobReminders:     svc.Cron.SendReminders,
				services.JobComplete:      svc.Cron.CompleteStays,
			}
			for _, job := range jobs {
				sweep, ok := sweeps[job]
				if !ok {
					return fmt.Errorf("unknown job %q", job)
				}
				res, err := sweep(ctx)
				if err != nil {
					return fmt.Errorf("%s: %w", job, err)
				}
				rt.log.Info("sweep finished",
					zap.String("job", res.Job),
					zap.Int("processed", res.Processed),
					zap.Int("succeeded", res.Succeeded),
					zap.Int("failed", res.Failed))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&jobs, "jobs",
		[]string{services.JobCancelExpired, services.JobReminders, services.JobComplete},
		"sweeps to run, in order")
	return cmd
}

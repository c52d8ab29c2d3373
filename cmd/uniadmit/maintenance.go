package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/uniadmit/internal/admission"
	"github.com/jonathan/uniadmit/internal/observability"
	"github.com/jonathan/uniadmit/internal/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Notify every applicant of their current status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *admission.Service) error {
			n, err := svc.PublishAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published status to %d applicant(s)\n", n)
			return nil
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Re-derive draft and returned applications' documents from the catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *admission.Service) error {
			n, err := svc.ReconcileAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reconciled %d applicant(s)\n", n)
			return nil
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print applicant counts per status and interview slot occupancy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(ctx context.Context, svc *admission.Service) error {
			applicants, err := svc.ListApplicants(ctx, types.ApplicantFilter{})
			if err != nil {
				return err
			}
			slots, err := svc.ListSlots(ctx)
			if err != nil {
				return err
			}
			p := observability.NewPrinter(cmd.OutOrStdout())
			p.PrintPipeline(applicants)
			p.PrintSlots(slots)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(publishCmd, reconcileCmd, reportCmd)
}

func withService(fn func(context.Context, *admission.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	svc, st, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, svc)
}

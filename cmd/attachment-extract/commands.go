package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mikey/attachment-router/internal/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type plannedObject struct {
	Bucket      string `json:"bucket" yaml:"bucket"`
	Key         string `json:"key" yaml:"key"`
	Size        int    `json:"size" yaml:"size"`
	ContentType string `json:"content_type" yaml:"content_type"`
}

type skippedAttachment struct {
	Filename string `json:"filename" yaml:"filename"`
	Reason   string `json:"reason" yaml:"reason"`
}

type planOutput struct {
	Source      string              `json:"source" yaml:"source"`
	Digest      string              `json:"digest" yaml:"digest"`
	ProcessedOn string              `json:"processed_on" yaml:"processed_on"`
	Rejected    string              `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Writes      []plannedObject     `json:"writes" yaml:"writes"`
	Skipped     []skippedAttachment `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [message file]",
		Short: "Show the storage writes a message would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession("")
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			raw, err := s.fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			plan, reason, err := s.service.Preview(raw, s.date)
			if err != nil {
				return err
			}

			out := planOutput{
				Source:      raw.Source.Key,
				Digest:      raw.Digest,
				ProcessedOn: s.date.Format(s.dateFormat),
				Rejected:    reason,
			}
			if plan != nil {
				out.ProcessedOn = plan.ProcessedOn
				for _, obj := range plan.Objects {
					out.Writes = append(out.Writes, plannedObject{
						Bucket:      obj.Bucket,
						Key:         obj.Key,
						Size:        len(obj.Data),
						ContentType: obj.ContentType,
					})
				}
				for _, sk := range plan.Skipped {
					out.Skipped = append(out.Skipped, skippedAttachment(sk))
				}
			}

			return render(cmd.OutOrStdout(), flags.Format, out)
		},
	}
	cmd.Flags().StringVarP(&flags.Format, "output", "o", "yaml", "Output format (yaml, json)")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [message file]",
		Short: "Route a message's attachments into a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.OutDir == "" {
				return fmt.Errorf("--out is required")
			}

			s, err := newSession(flags.OutDir)
			if err != nil {
				return err
			}
			defer s.logger.Sync()

			raw, err := s.fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			report, err := s.service.Route(cmd.Context(), raw, s.date)
			if err != nil {
				return err
			}

			s.logger.Info("Routed message",
				zap.String("status", string(report.Status)),
				zap.String("reason", report.Reason),
				zap.Int("written", len(report.Written)),
				zap.Int("skipped", len(report.Skipped)))

			w := cmd.OutOrStdout()
			for _, loc := range report.Written {
				fmt.Fprintf(w, "wrote %s\n", loc.String())
			}
			for _, sk := range report.Skipped {
				fmt.Fprintf(w, "skipped %s: %s\n", sk.Filename, sk.Reason)
			}
			if report.Status == core.StatusRejected {
				fmt.Fprintf(w, "rejected: %s\n", report.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.OutDir, "out", "", "Directory used as local object storage")
	return cmd
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

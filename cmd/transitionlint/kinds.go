package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-transitions/capability"
)

type kindInfo struct {
	Name        string          `json:"name"`
	EmitterType string          `json:"emitter_type"`
	Capability  string          `json:"capability,omitempty"`
	Schema      json.RawMessage `json:"schema,omitempty"`
}

func newKindsCmd(cfg *config) *cobra.Command {
	var withSchema bool

	cmd := &cobra.Command{
		Use:   "kinds [KIND...]",
		Short: "List the registered transition kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			reg := svc.Registry()

			names := args
			if len(names) == 0 {
				names = reg.Names()
			}

			infos := make([]kindInfo, 0, len(names))
			for _, name := range names {
				k, ok := reg.Lookup(name)
				if !ok {
					return fmt.Errorf("unknown transition kind '%s'", name)
				}
				info := kindInfo{Name: k.Name, EmitterType: string(k.EmitterType), Capability: string(k.Capability)}
				if withSchema {
					doc, _ := reg.Schema(name)
					info.Schema = json.RawMessage(doc)
				}
				infos = append(infos, info)
			}

			out := cmd.OutOrStdout()
			if cfg.Output == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tEMITTER\tREQUIRES")
			for _, info := range infos {
				req := info.Capability
				if req == "" {
					req = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.EmitterType, req)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if withSchema {
				for _, info := range infos {
					fmt.Fprintf(out, "\n# %s\n%s\n", info.Name, info.Schema)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSchema, "schema", false, "Include the JSON schema of each kind")
	return cmd
}

func newHostsCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "hosts",
		Short: "List the known light output types and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cfg)
			if err != nil {
				return err
			}
			hosts := svc.Hosts()

			caps := make(map[string][]capability.Token)
			for _, name := range hosts.Names() {
				h, _ := hosts.Get(name)
				caps[name] = h.Capabilities().Tokens()
			}

			out := cmd.OutOrStdout()
			if cfg.Output == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(caps)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "HOST\tCAPABILITIES")
			for _, name := range hosts.Names() {
				fmt.Fprintf(tw, "%s\t%v\n", name, caps[name])
			}
			return tw.Flush()
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> [id]",
		Short: "Fetch an entity collection or a single entity",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := a.client()
			if len(args) == 2 {
				entity, err := client.GetByID(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(entity)
			}
			entities, err := client.GetAll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(entities)
		},
	}
}

func newCreateCommand(a *app) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create <entity>",
		Short: "Create an entity from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parsePayload(data)
			if err != nil {
				return err
			}
			entity, err := a.client().Create(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			return printJSON(entity)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload (required)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newUpdateCommand(a *app) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "update <entity> <id>",
		Short: "Replace an entity with a JSON payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parsePayload(data)
			if err != nil {
				return err
			}
			entity, err := a.client().Update(cmd.Context(), args[0], args[1], payload)
			if err != nil {
				return err
			}
			return printJSON(entity)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload (required)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newPatchCommand(a *app) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "patch <entity> <id>",
		Short: "Partially update an entity with a JSON payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parsePayload(data)
			if err != nil {
				return err
			}
			entity, err := a.client().Patch(cmd.Context(), args[0], args[1], payload)
			if err != nil {
				return err
			}
			return printJSON(entity)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON payload (required)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client().Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("deleted %s %s\n", args[0], args[1])
			return nil
		},
	}
}

func parsePayload(data string) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return payload, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

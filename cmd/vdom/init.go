package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
)

const exampleScenario = `name: example
description: keyed reorder, insertion and a component that re-renders on change
steps:
  - name: initial
    tree:
      tag: main
      children:
        - {key: title, tag: h1, children: [{text: Todos}]}
        - key: items
          tag: ul
          class: todo
          children:
            - {key: milk, tag: li, on: [click], children: [{text: Milk}]}
            - {key: eggs, tag: li, on: [click], children: [{text: Eggs}]}
        - {key: footer, component: footer, children: [{tag: small, children: [{text: 2 items}]}]}
  - name: reorder and insert
    tree:
      tag: main
      children:
        - {key: title, tag: h1, children: [{text: Todos}]}
        - key: items
          tag: ul
          class: todo
          children:
            - {key: eggs, tag: li, on: [click], children: [{text: Eggs}]}
            - {key: bread, tag: li, on: [click], children: [{text: Bread}]}
            - {key: milk, tag: li, on: [click], children: [{text: Milk}]}
        - {key: footer, component: footer, children: [{tag: small, children: [{text: 3 items}]}]}
  - name: remove
    tree:
      tag: main
      children:
        - {key: title, tag: h1, children: [{text: Todos}]}
        - key: items
          tag: ul
          class: todo
          children:
            - {key: bread, tag: li, on: [click], children: [{text: Bread}]}
        - {key: footer, component: footer, children: [{tag: small, children: [{text: 1 item}]}]}
`

func initCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default vdom.yaml and an example scenario",
		Long: `Write vdom.yaml with default values and scenarios/example.yaml.

Examples:
  vdom init
  vdom init ./demo
  vdom init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")

	return cmd
}

func runInit(dir string, force bool) error {
	if config.Exists(dir) && !force {
		return errors.Newf(errors.CategoryCLI, "%s already exists in %s", config.ConfigFileName, dir).
			WithSuggestion("Use --force to overwrite it")
	}

	scenarioPath := filepath.Join(dir, "scenarios", "example.yaml")
	if err := os.MkdirAll(filepath.Dir(scenarioPath), 0755); err != nil {
		return fmt.Errorf("create scenarios directory: %w", err)
	}

	cfg := config.New()
	cfg.Scenario = filepath.Join("scenarios", "example.yaml")
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}
	success("Wrote %s", filepath.Join(dir, config.ConfigFileName))

	if _, err := os.Stat(scenarioPath); err == nil && !force {
		warn("Kept existing %s", scenarioPath)
	} else {
		if err := os.WriteFile(scenarioPath, []byte(exampleScenario), 0644); err != nil {
			return fmt.Errorf("write example scenario: %w", err)
		}
		success("Wrote %s", scenarioPath)
	}

	fmt.Println()
	info("Next steps:")
	info("  vdom replay --diff")
	info("  vdom serve")
	return nil
}

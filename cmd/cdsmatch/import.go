package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/config"
	"cdsmatch/internal/embedding"
)

// seedFile is the YAML shape consumed by the import command.
type seedFile struct {
	Scenarios []struct {
		Scenario    string `yaml:"scenario"`
		Description string `yaml:"description"`
		Category    string `yaml:"category"`
	} `yaml:"scenarios"`
	Views []struct {
		Name        string            `yaml:"name"`
		Description string            `yaml:"description"`
		Category    string            `yaml:"category"`
		Active      *bool             `yaml:"active"`
		Fields      map[string]string `yaml:"fields"` // language -> content block
	} `yaml:"views"`
	CustomFields []struct {
		TableName   string `yaml:"table_name"`
		FieldName   string `yaml:"field_name"`
		FieldDesc   string `yaml:"field_desc"`
		IsKey       bool   `yaml:"is_key"`
		Obligatory  string `yaml:"obligatory"`
		DataType    string `yaml:"data_type"`
		LengthTotal string `yaml:"length_total"`
		LengthDec   string `yaml:"length_dec"`
		SourceDesc  string `yaml:"source_desc"`
		Active      *bool  `yaml:"active"`
	} `yaml:"custom_fields"`
}

var importCmd = &cobra.Command{
	Use:   "import <seed.yaml>",
	Short: "Load scenarios, views and custom fields into the catalog store",
	Long: `Import reads a YAML seed file and writes its scenarios, views, per-view
field content and custom fields into the local catalog database, embedding
the searchable text as it goes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var seed seedFile
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}

		engine, err := embedding.New(cfg.Embedding)
		if err != nil {
			return fmt.Errorf("embedding engine: %w", err)
		}
		store, err := catalog.Open(cfg.Catalog.Path, engine, cfg.Language)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		for _, s := range seed.Scenarios {
			if err := store.AddScenario(ctx, s.Scenario, s.Description, s.Category); err != nil {
				return fmt.Errorf("scenario %q: %w", s.Scenario, err)
			}
		}
		for _, v := range seed.Views {
			active := v.Active == nil || *v.Active
			if err := store.AddView(ctx, v.Name, v.Description, v.Category, active); err != nil {
				return fmt.Errorf("view %q: %w", v.Name, err)
			}
			for langu, content := range v.Fields {
				if err := store.SetFieldContent(ctx, v.Name, langu, content); err != nil {
					return fmt.Errorf("view %q fields (%s): %w", v.Name, langu, err)
				}
			}
		}
		for _, c := range seed.CustomFields {
			active := c.Active == nil || *c.Active
			hit := catalog.CustomFieldHit{
				TableName:   c.TableName,
				FieldName:   c.FieldName,
				FieldDesc:   c.FieldDesc,
				IsKey:       c.IsKey,
				Obligatory:  c.Obligatory,
				DataType:    c.DataType,
				LengthTotal: c.LengthTotal,
				LengthDec:   c.LengthDec,
			}
			if err := store.AddCustomField(ctx, hit, c.SourceDesc, active); err != nil {
				return fmt.Errorf("custom field %s.%s: %w", c.TableName, c.FieldName, err)
			}
		}

		fmt.Printf("imported %d scenarios, %d views, %d custom fields\n",
			len(seed.Scenarios), len(seed.Views), len(seed.CustomFields))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

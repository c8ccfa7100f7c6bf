// Package campaign defines the bank-marketing campaign ETL: ten numbered
// zip archives in files/input are consolidated and split into client.csv,
// campaign.csv and economics.csv under files/output.
package campaign

import (
	"context"

	"bankmarketing/internal/config"
	"bankmarketing/internal/pipeline"
	"bankmarketing/internal/schema"
)

// Fixed locations and names of the campaign run.
const (
	Job            = "bank_marketing"
	InputDir       = "files/input"
	ArchivePattern = "bank-marketing-campaing-%d.csv.zip"
	ArchiveCount   = 10
	OutputDir      = "files/output"
)

// ContactYear is the year assigned to every last_contact_date.
const ContactYear = 2022

// DefaultPipeline returns the campaign pipeline with its fixed inputs,
// projections and output contracts. No database sink is configured.
func DefaultPipeline() config.Pipeline {
	return config.Pipeline{
		Job: Job,
		Source: config.Source{
			Kind: "zip",
			Zip:  config.SourceZip{Dir: InputDir, Pattern: ArchivePattern, Count: ArchiveCount},
		},
		Parser: config.Parser{Kind: "csv", Options: config.Options{"comma": ","}},
		Tables: []config.Table{ClientTable(), CampaignTable(), EconomicsTable()},
		Output: config.Output{Dir: OutputDir},
	}
}

// ClientTable derives client.csv.
func ClientTable() config.Table {
	return config.Table{
		Name:   "client",
		File:   "client.csv",
		Select: []string{"client_id", "age", "job", "marital", "education", "credit_default", "mortgage"},
		Transform: []config.Transform{
			replace("job", ".", ""),
			replace("job", "-", "_"),
			replace("education", ".", "_"),
			{Kind: "null_if", Options: config.Options{"field": "education", "value": "unknown"}},
			binary("credit_default", "yes"),
			binary("mortgage", "yes"),
		},
		Contract: schema.Contract{Name: "client", Fields: []schema.Field{
			{Name: "client_id", Type: "int"},
			{Name: "age", Type: "int"},
			{Name: "job", Type: "text"},
			{Name: "marital", Type: "text"},
			{Name: "education", Type: "text", Nullable: true},
			{Name: "credit_default", Type: "int"},
			{Name: "mortgage", Type: "int"},
		}},
	}
}

// CampaignTable derives campaign.csv. month and day are consumed by the
// contact date rule and dropped from the output.
func CampaignTable() config.Table {
	return config.Table{
		Name: "campaign",
		File: "campaign.csv",
		Select: []string{
			"client_id", "number_contacts", "contact_duration", "previous_campaign_contacts",
			"previous_outcome", "campaign_outcome", "month", "day",
		},
		Transform: []config.Transform{
			binary("previous_outcome", "success"),
			binary("campaign_outcome", "yes"),
			{Kind: "contact_date", Options: config.Options{
				"month_field": "month",
				"day_field":   "day",
				"year":        ContactYear,
				"target":      "last_contact_date",
			}},
		},
		Contract: schema.Contract{Name: "campaign", Fields: []schema.Field{
			{Name: "client_id", Type: "int"},
			{Name: "number_contacts", Type: "int"},
			{Name: "contact_duration", Type: "int"},
			{Name: "previous_campaign_contacts", Type: "int"},
			{Name: "previous_outcome", Type: "int"},
			{Name: "campaign_outcome", Type: "int"},
			{Name: "last_contact_date", Type: "date"},
		}},
	}
}

// EconomicsTable derives economics.csv; values are copied verbatim.
func EconomicsTable() config.Table {
	return config.Table{
		Name:   "economics",
		File:   "economics.csv",
		Select: []string{"client_id", "cons_price_idx", "euribor_three_months"},
		Contract: schema.Contract{Name: "economics", Fields: []schema.Field{
			{Name: "client_id", Type: "int"},
			{Name: "cons_price_idx", Type: "float"},
			{Name: "euribor_three_months", Type: "float"},
		}},
	}
}

// CleanCampaignData runs the campaign pipeline against the fixed input and
// output directories.
func CleanCampaignData() error {
	_, err := pipeline.Run(context.Background(), DefaultPipeline())
	return err
}

func replace(field, old, new string) config.Transform {
	return config.Transform{Kind: "replace", Options: config.Options{"field": field, "old": old, "new": new}}
}

func binary(field, truthy string) config.Transform {
	return config.Transform{Kind: "binary", Options: config.Options{"field": field, "truthy": truthy}}
}

// Package entity defines the domain models for the transform feature.
package entity

import "cloud.google.com/go/civil"

// JoinedRecord is one output row of the price/sentiment outer join.
// Columns keep the staged CSV names so the warehouse table matches the record sets.
type JoinedRecord struct {
	Day         civil.Date `json:"Day" bigquery:"Day"`
	Stock       string     `json:"Stock" bigquery:"Stock"`
	StockName   string     `json:"Stock_Name" bigquery:"Stock_Name"`
	Value       float64    `json:"Value" bigquery:"Value"`
	Time        string     `json:"Time" bigquery:"Time"`
	URL         string     `json:"URL" bigquery:"URL"`
	Title       string     `json:"Title" bigquery:"Title"`
	Sentiment   float64    `json:"Sentiment" bigquery:"Sentiment"`
	RecordCount int64      `json:"Record_Count" bigquery:"Record_Count"`
}

package cmd

import (
	"github.com/etnz/goldlog/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	topics, _ := docs.GetAllTopics()
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"add": {
				Flags: map[string]complete.Predictor{
					"date":     predict.Something,
					"price":    predict.Something,
					"quantity": predict.Something,
				},
			},
			"list": {
				Flags: map[string]complete.Predictor{
					"head": predict.Something,
					"tail": predict.Something,
				},
			},
			"enter": {
				Flags: map[string]complete.Predictor{
					"no-list": predict.Nothing,
				},
			},
			"topic": {
				Flags: map[string]complete.Predictor{
					"list": predict.Nothing,
				},
				Args: predict.Set(append(topics, "readme")),
			},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
		Flags: map[string]complete.Predictor{
			"store":   predict.Something,
			"retries": predict.Something,
			"v":       predict.Nothing,
			"plain":   predict.Nothing,
		},
	}
}

// Package sampledata provides the sample dataset source node. Datasets are
// fetched over HTTP as CSV and memoized, so repeated runs of the same flow
// hit the network once.
package sampledata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/flowfn/flowfn/pkg/cache"
	"github.com/flowfn/flowfn/pkg/dataset"
	"github.com/flowfn/flowfn/pkg/models"
)

const (
	Type          = "sampledata"
	InputDataset  = "dataset"
	defaultChoice = "iris"
)

// DefaultURLs maps dataset names to their public CSV locations.
var DefaultURLs = map[string]string{
	"iris":      "https://gist.github.com/netj/8836201/raw/6f9306ad21398ea43cba4f7d537619d0e07d5ae3/iris.csv",
	"titanic":   "https://github.com/datasciencedojo/datasets/raw/master/titanic.csv",
	"countries": "https://github.com/bnokoro/Data-Science/raw/master/countries%20of%20the%20world.csv",
}

// Node fetches and caches named sample datasets.
type Node struct {
	urls   map[string]string
	loader *cache.Loader[*dataset.Table]
}

// New builds the node. A nil client falls back to http.DefaultClient and
// nil urls fall back to DefaultURLs.
func New(client *http.Client, urls map[string]string) *Node {
	if client == nil {
		client = http.DefaultClient
	}

	if urls == nil {
		urls = DefaultURLs
	}

	n := &Node{urls: urls}
	n.loader = cache.NewLoader(time.Hour, func(ctx context.Context, url string) (*dataset.Table, error) {
		return fetch(ctx, client, url)
	})

	return n
}

func fetch(ctx context.Context, client *http.Client, url string) (*dataset.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset fetch returned status %d", resp.StatusCode)
	}

	return dataset.ReadCSV(resp.Body)
}

func (n *Node) handle(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	name, _ := inputs[InputDataset].(string)

	url, ok := n.urls[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample dataset %q", name)
	}

	table, err := n.loader.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	return map[string]any{"result": table}, nil
}

// Definition describes the node for the registry.
func (n *Node) Definition() *models.NodeType {
	return &models.NodeType{
		Type:        Type,
		Label:       "Sample data",
		Description: "Load one of the bundled sample datasets (iris, titanic, countries).",
		Inputs: []models.InputPort{
			{
				Name:        InputDataset,
				Type:        "string",
				Description: "Name of the sample dataset to load",
				Default:     defaultChoice,
				Choices:     []string{"iris", "titanic", "countries"},
			},
		},
		Outputs: []models.OutputPort{
			{Name: "result", Type: "table", Description: "The decoded dataset"},
		},
		Handler: n.handle,
	}
}

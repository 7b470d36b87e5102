package supabase

import (
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"

	"site-admin-backend/internal/config"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient authenticates with the service key so row level security does
// not hide rows from the console.
func NewClient(cfg *config.Config) (*Client, error) {
	client, err := supabase.NewClient(strings.TrimRight(cfg.Supabase.URL, "/"), cfg.Supabase.ServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}

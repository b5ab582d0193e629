package seeders

import (
	"context"

	"github.com/cpbyrne/ostaa/app/services"
	"github.com/cpbyrne/ostaa/pkg/database"
)

func init() {
	Register("demo", SeedDemo)
}

// SeedDemo inserts a couple of accounts with listings so a fresh install
// has something to browse. Re-running it is safe: accounts that already
// exist are skipped.
func SeedDemo(ctx context.Context) error {
	accounts := services.NewAccountService()
	market := services.NewMarketService()

	demo := []struct {
		username string
		items    []services.CreateItemInput
	}{
		{
			username: "chris",
			items: []services.CreateItemInput{
				{Title: "Fender Stratocaster", Description: "Sunburst, light fret wear, includes gig bag.", Price: 450},
				{Title: "Road bike", Description: "54cm aluminium frame, new tires.", Price: 220},
			},
		},
		{
			username: "ben",
			items: []services.CreateItemInput{
				{Title: "Calculus textbook", Description: "8th edition, barely opened.", Price: 35},
			},
		},
	}

	for _, acct := range demo {
		if _, err := accounts.Register(ctx, acct.username, "password"); err != nil {
			if database.IsDuplicateKey(err) {
				continue
			}
			return err
		}
		for _, item := range acct.items {
			if _, err := market.CreateItem(ctx, item, acct.username); err != nil {
				return err
			}
		}
	}
	return nil
}

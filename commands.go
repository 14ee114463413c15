package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tournevent/shipkit/internal/eventstore"
	"github.com/tournevent/shipkit/internal/server"
	"github.com/tournevent/shipkit/pkg/shipapi"
	"github.com/tournevent/shipkit/pkg/shipapi/address"
	"github.com/tournevent/shipkit/pkg/shipapi/shipment"
	"github.com/tournevent/shipkit/pkg/shipapi/tracker"
	"github.com/tournevent/shipkit/pkg/shipapi/webhook"
	"go.uber.org/zap"
)

// optString returns the flag value only when the user set it.
func optString(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetString(name)
	return &v
}

func optBool(flags *pflag.FlagSet, name string) *bool {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetBool(name)
	return &v
}

// collectPages follows the cursor from first until pages pages were read or
// the API reports no more records.
func collectPages[T shipapi.Identifiable, F shipapi.Paginated[F]](
	ctx context.Context,
	first *shipapi.Collection[T, F],
	next func(context.Context, *shipapi.Collection[T, F]) (*shipapi.Collection[T, F], error),
	pages int,
) ([]T, error) {
	items := append([]T(nil), first.Items...)
	page := first
	for i := 1; i < pages; i++ {
		var err error
		page, err = next(ctx, page)
		if errors.Is(err, shipapi.ErrEndOfPagination) {
			break
		}
		if err != nil {
			return items, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// ==================== address ====================

func newAddressCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "address", Short: "Create, retrieve and list addresses"}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			params := &address.CreateParams{
				Name:        optString(flags, "name"),
				Company:     optString(flags, "company"),
				Street1:     optString(flags, "street1"),
				Street2:     optString(flags, "street2"),
				City:        optString(flags, "city"),
				State:       optString(flags, "state"),
				Zip:         optString(flags, "zip"),
				Country:     optString(flags, "country"),
				Phone:       optString(flags, "phone"),
				Email:       optString(flags, "email"),
				Residential: optBool(flags, "residential"),
			}
			verify, _ := flags.GetStringSlice("verify")
			for _, v := range verify {
				params.ToVerify = append(params.ToVerify, address.Verification(v))
			}
			strict, _ := flags.GetStringSlice("verify-strict")
			for _, v := range strict {
				params.ToVerifyStrict = append(params.ToVerifyStrict, address.Verification(v))
			}

			created, err := address.New(api).Create(cmd.Context(), shipapi.Typed(params))
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), created)
		},
	}
	for _, name := range []string{"name", "company", "street1", "street2", "city", "state", "zip", "country", "phone", "email"} {
		create.Flags().String(name, "", "address "+name)
	}
	create.Flags().Bool("residential", false, "mark the address as residential")
	create.Flags().StringSlice("verify", nil, "verifications to run (delivery, zip4)")
	create.Flags().StringSlice("verify-strict", nil, "verifications that must pass")

	retrieve := &cobra.Command{
		Use:   "retrieve <id>",
		Short: "Retrieve an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			addr, err := address.New(api).Retrieve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), addr)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List addresses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			addresses := address.New(api)
			first, err := addresses.All(cmd.Context(), &shipapi.ListParams{PageSize: a.pageSizePtr()})
			if err != nil {
				return err
			}
			items, err := collectPages(cmd.Context(), first, func(ctx context.Context, page *address.Collection) (*address.Collection, error) {
				return addresses.Next(ctx, page, a.pageSizePtr())
			}, a.pages)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), items)
		},
	}

	cmd.AddCommand(create, retrieve, list)
	return cmd
}

// ==================== tracker ====================

func newTrackerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "tracker", Short: "Create, retrieve and list trackers"}

	create := &cobra.Command{
		Use:   "create <tracking-code>",
		Short: "Start tracking a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			params := &tracker.CreateParams{
				TrackingCode: &args[0],
				Carrier:      optString(cmd.Flags(), "carrier"),
			}
			trk, err := tracker.New(api).Create(cmd.Context(), shipapi.Typed(params))
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), trk)
		},
	}
	create.Flags().String("carrier", "", "carrier name")

	retrieve := &cobra.Command{
		Use:   "retrieve <id>...",
		Short: "Retrieve one or more trackers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			trackers := tracker.New(api)
			if len(args) == 1 {
				trk, err := trackers.Retrieve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), trk)
			}

			found, errs := trackers.RetrieveMany(cmd.Context(), args)
			for _, err := range errs {
				a.logger.Ctx(cmd.Context()).Warn("Failed to retrieve tracker", zap.Error(err))
			}
			if len(found) == 0 && len(errs) > 0 {
				return errors.Join(errs...)
			}
			return a.print(cmd.OutOrStdout(), found)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List trackers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			trackers := tracker.New(api)
			params := &tracker.ListParams{
				ListParams:   shipapi.ListParams{PageSize: a.pageSizePtr()},
				TrackingCode: optString(cmd.Flags(), "tracking-code"),
				Carrier:      optString(cmd.Flags(), "carrier"),
			}
			first, err := trackers.All(cmd.Context(), params)
			if err != nil {
				return err
			}
			items, err := collectPages(cmd.Context(), first, func(ctx context.Context, page *tracker.Collection) (*tracker.Collection, error) {
				return trackers.Next(ctx, page, a.pageSizePtr())
			}, a.pages)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), items)
		},
	}
	list.Flags().String("tracking-code", "", "only trackers with this tracking code")
	list.Flags().String("carrier", "", "only trackers for this carrier")

	cmd.AddCommand(create, retrieve, list)
	return cmd
}

// ==================== shipment ====================

func newShipmentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "shipment", Short: "Retrieve, list and buy shipments"}

	retrieve := &cobra.Command{
		Use:   "retrieve <id>",
		Short: "Retrieve a shipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			s, err := shipment.New(api).Retrieve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), s)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List shipments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			shipments := shipment.New(api)
			params := &shipment.ListParams{
				ListParams: shipapi.ListParams{PageSize: a.pageSizePtr()},
				Purchased:  optBool(cmd.Flags(), "purchased"),
			}
			first, err := shipments.All(cmd.Context(), params)
			if err != nil {
				return err
			}
			items, err := collectPages(cmd.Context(), first, func(ctx context.Context, page *shipment.Collection) (*shipment.Collection, error) {
				return shipments.Next(ctx, page, a.pageSizePtr())
			}, a.pages)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), items)
		},
	}
	list.Flags().Bool("purchased", false, "only purchased (true) or unpurchased (false) shipments")

	buy := &cobra.Command{
		Use:   "buy <id>",
		Short: "Buy postage for a shipment",
		Long:  "Buy postage with --rate, or with the cheapest rate matching --carrier and --service.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			shipments := shipment.New(api)
			flags := cmd.Flags()

			rate := &shipapi.Rate{}
			if id, _ := flags.GetString("rate"); id != "" {
				rate.ID = id
			} else {
				s, err := shipments.Retrieve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				carriers, _ := flags.GetStringSlice("carrier")
				services, _ := flags.GetStringSlice("service")
				if rate, err = shipment.LowestRate(s, carriers, services); err != nil {
					return err
				}
			}

			bought, err := shipments.Buy(cmd.Context(), args[0], &shipment.BuyParams{
				Rate:      rate,
				Insurance: optString(flags, "insurance"),
			})
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), bought)
		},
	}
	buy.Flags().String("rate", "", "rate id to buy")
	buy.Flags().StringSlice("carrier", nil, "carriers allowed when picking the lowest rate")
	buy.Flags().StringSlice("service", nil, "services allowed when picking the lowest rate")
	buy.Flags().String("insurance", "", "amount to insure")

	cmd.AddCommand(retrieve, list, buy)
	return cmd
}

// ==================== webhook ====================

func newWebhookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "webhook", Short: "Manage webhooks"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List webhooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.client()
			if err != nil {
				return err
			}
			hooks, err := webhook.New(api).All(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), hooks)
		},
	}

	cmd.AddCommand(list)
	return cmd
}

// ==================== auth ====================

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "auth", Short: "Store or remove the API key in the keychain"}

	login := &cobra.Command{
		Use:   "login",
		Short: "Save an API key for the selected profile",
		Long:  "Save an API key for the selected profile. The key is read from --api-key or the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("api-key")
			if key == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading api key: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			if err := a.store.Save(a.profile, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved API key for profile %q\n", a.profile)
			return nil
		},
	}
	login.Flags().String("api-key", "", "API key to store")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the API key for the selected profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Delete(a.profile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Removed API key for profile %q\n", a.profile)
			return nil
		},
	}

	cmd.AddCommand(login, logout)
	return cmd
}

// ==================== listen ====================

func newListenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive webhook events and print them as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			port := a.cfg.WebhookPort
			if cmd.Flags().Changed("port") {
				port, _ = cmd.Flags().GetInt("port")
			}
			secret := a.cfg.WebhookSecret
			if s := optString(cmd.Flags(), "secret"); s != nil {
				secret = *s
			}
			if secret == "" {
				return errors.New("a webhook secret is required (--secret or WEBHOOK_SECRET)")
			}

			opts := []server.Option{
				server.WithGatherer(a.registry),
				server.WithEventHandler(func(_ context.Context, event *shipapi.Event) error {
					return a.print(cmd.OutOrStdout(), event)
				}),
			}
			if a.cfg.RedisAddr != "" {
				store, err := eventstore.NewRedisStore(ctx, a.cfg.RedisAddr, a.cfg.RedisEventTTL)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, server.WithDeduper(store))
			}

			srv := server.New(server.Config{Port: port, Secret: secret}, a.logger, a.metrics, opts...)
			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Int("port", 8080, "port to listen on")
	cmd.Flags().String("secret", "", "webhook secret used to verify signatures")
	return cmd
}

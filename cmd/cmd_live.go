package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	notificationapp "github.com/akhdanrgya/teluhub-client/application/notification"
	orderapp "github.com/akhdanrgya/teluhub-client/application/order"
	"github.com/akhdanrgya/teluhub-client/application/session"
	"github.com/akhdanrgya/teluhub-client/application/stock"
	"github.com/akhdanrgya/teluhub-client/cmd/tui"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/thirdparty/rabbitmq"
	"github.com/akhdanrgya/teluhub-client/thirdparty/stockgrpc"
	"github.com/akhdanrgya/teluhub-client/transport"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	readFlag        uint64
	relayFlag       bool
	plainFlag       bool
	metricsAddrFlag string
	eventKeysFlag   []string
)

// teluhub notifications
var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List notifications, optionally marking one as read",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := session.RequireRole(client.store); err != nil {
			return err
		}

		feed := client.feed(nil)
		defer feed.Close()
		if err := feed.Fetch(cmd.Context()); err != nil {
			return err
		}
		if readFlag != 0 {
			if err := feed.MarkAsRead(cmd.Context(), readFlag); err != nil {
				return err
			}
		}

		items := feed.List()
		if len(items) == 0 {
			fmt.Println(mutedStyle.Render("No notifications."))
			return nil
		}
		rows := make([][]string, 0, len(items))
		for _, n := range items {
			rows = append(rows, []string{
				fmt.Sprint(n.ID),
				n.State.String(),
				string(n.Type),
				n.Title,
				n.Message,
				n.Link(),
				n.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		fmt.Println(renderTable([]string{"ID", "State", "Type", "Title", "Message", "Link", "Date"}, rows))
		fmt.Printf("%d unread\n", feed.UnreadCount())
		return nil
	},
}

// teluhub chat <room>
var chatCmd = &cobra.Command{
	Use:   "chat <room>",
	Short: "Join a chat room; each input line is sent as a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		room, err := client.chat.Join(ctx, args[0])
		if err != nil {
			return err
		}
		defer room.Close()

		fmt.Println(mutedStyle.Render(fmt.Sprintf("Joined %s. Ctrl+D to leave.", room.ID())))

		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if err := room.Send(scanner.Text()); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}
			stop()
		}()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-room.Done():
				fmt.Println(mutedStyle.Render("Connection closed."))
				return nil
			case msg := <-room.Incoming():
				sender := msg.Sender
				if room.Mine(msg) {
					sender = okStyle.Render("you")
				}
				fmt.Printf("%s: %s\n", sender, msg.Content)
			}
		}
	},
}

// teluhub watch <slug>
var watchCmd = &cobra.Command{
	Use:   "watch <slug>",
	Short: "Follow a product's stock live, with your notifications alongside",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := client.products.GetProduct(ctx, args[0])
		if err != nil {
			return err
		}

		stockClient, err := stockgrpc.NewClient(client.cfg.GRPC.Target, client.cfg.GRPC.TrackStockRoute)
		if err != nil {
			return err
		}
		defer stockClient.Close()

		var relay *rabbitmq.Publisher
		if relayFlag {
			if relay, err = client.relay(); err != nil {
				return err
			}
			defer relay.Close()
		}

		addr := metricsAddrFlag
		if addr == "" {
			addr = client.cfg.Metrics.Addr
		}
		if addr != "" {
			srv := serveMetrics(addr, transport.NewTransport(client.store, client.cfg.Profile))
			defer shutdownMetrics(srv)
		}

		watcher := stock.NewWatcher(stock.NewStockApp(stockClient, stockPublisher(relay)))
		defer watcher.Close()
		sub := watcher.Track(ctx, p.ID, p.Stock)

		var feed tui.Feed
		if client.store.IsAuthenticated() {
			f := client.feed(notificationPublisher(relay))
			defer f.Close()
			if err := f.Start(ctx); err != nil {
				logger.Warn("[watch] notifications unavailable", zap.String("error", err.Error()))
			} else {
				feed = f
			}
		}

		if plainFlag {
			return watchPlain(ctx, p, sub)
		}

		// the alternate screen owns the terminal
		logger.Detach()
		_, err = tea.NewProgram(tui.NewWatchModel(*p, sub, feed), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if stderrors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	},
}

// teluhub events
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail events relayed by `watch --relay`",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rmq := client.cfg.RabbitMQ
		consumer, err := rabbitmq.NewConsumer(rmq.Host, rmq.Port, rmq.User, rmq.Password, rmq.Exchange, eventKeysFlag...)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer consumer.Close()

		err = consumer.Start(ctx, func(e rabbitmq.Event) {
			fmt.Printf("%s  %-22s %s  %s\n",
				e.OccurredAt.Local().Format("15:04:05"),
				e.Type,
				mutedStyle.Render(e.Profile),
				string(e.Data),
			)
		})
		if err != nil {
			return err
		}

		fmt.Println(mutedStyle.Render("Listening on " + rmq.Exchange + ". Ctrl+C to stop."))
		<-ctx.Done()
		return nil
	},
}

func watchPlain(ctx context.Context, p *model.Product, sub *stock.Subscription) error {
	fmt.Printf("%s stock %d\n", p.Name, sub.Stock())
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-sub.Updates():
			if !ok {
				return sub.Err()
			}
			fmt.Printf("%s stock %d\n", time.Now().Format("15:04:05"), v)
		}
	}
}

func stockPublisher(relay *rabbitmq.Publisher) stock.EventPublisher {
	if relay == nil {
		return nil
	}
	return relay
}

func notificationPublisher(relay *rabbitmq.Publisher) notificationapp.EventPublisher {
	if relay == nil {
		return nil
	}
	return relay
}

func orderPublisher(relay *rabbitmq.Publisher) orderapp.EventPublisher {
	if relay == nil {
		return nil
	}
	return relay
}

func serveMetrics(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("[serveMetrics] ListenAndServe", zap.String("addr", addr), zap.String("error", err.Error()))
		}
	}()
	return srv
}

func shutdownMetrics(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func init() {
	notificationsCmd.Flags().Uint64Var(&readFlag, "read", 0, "Mark this notification as read")

	watchCmd.Flags().BoolVar(&relayFlag, "relay", false, "Relay stock updates and notifications to RabbitMQ")
	watchCmd.Flags().BoolVar(&plainFlag, "plain", false, "Print updates line by line instead of the live view")
	watchCmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "Serve Prometheus metrics on this address (default METRICS_ADDR)")

	eventsCmd.Flags().StringSliceVar(&eventKeysFlag, "key", nil, "Routing key pattern, repeatable (default every event)")
}

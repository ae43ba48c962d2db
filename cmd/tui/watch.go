package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/akhdanrgya/teluhub-client/application/stock"
	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	historySize        = 8
	notificationsShown = 5
	refreshInterval    = 500 * time.Millisecond
)

// Feed is the read side of the notification feed.
type Feed interface {
	List() []model.Notification
	UnreadCount() int
	Connected() bool
}

// WatchModel shows the live stock of one product next to the notification feed.
type WatchModel struct {
	product model.Product
	sub     *stock.Subscription
	feed    Feed

	stock   int64
	live    bool
	ended   bool
	err     error
	history []string

	notifications []model.Notification
	unread        int
	connected     bool
	width         int
}

// NewWatchModel renders product with sub as its stock source. feed may be nil
// for anonymous sessions.
func NewWatchModel(product model.Product, sub *stock.Subscription, feed Feed) WatchModel {
	return WatchModel{
		product: product,
		sub:     sub,
		feed:    feed,
		stock:   sub.Stock(),
	}
}

// Messages
type stockMsg struct {
	value int64
	at    time.Time
}

type streamEndedMsg struct{}

type tickMsg time.Time

// Commands
func waitForStock(sub *stock.Subscription) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-sub.Updates()
		if !ok {
			return streamEndedMsg{}
		}
		return stockMsg{value: v, at: time.Now()}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(waitForStock(m.sub), tick())
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.sub.Close()
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stockMsg:
		m.history = append(m.history, fmt.Sprintf("%s  %d → %d", msg.at.Format("15:04:05"), m.stock, msg.value))
		if len(m.history) > historySize {
			m.history = m.history[1:]
		}
		m.stock = msg.value
		m.live = true
		return m, waitForStock(m.sub)

	case streamEndedMsg:
		m.ended = true
		m.err = m.sub.Err()
		return m, nil

	case tickMsg:
		if m.feed != nil {
			m.notifications = m.feed.List()
			m.unread = m.feed.UnreadCount()
			m.connected = m.feed.Connected()
		}
		return m, tick()
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.product.Name))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("#%d  %s  Rp %d", m.product.ID, m.product.Slug, m.product.Price)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		stockStyle.Render(fmt.Sprintf("Stock %d", m.stock)),
		"  ",
		m.status(),
	))
	b.WriteString("\n")

	if len(m.history) > 0 {
		b.WriteString(boxStyle.Render(strings.Join(m.history, "\n")))
		b.WriteString("\n")
	}

	if m.feed != nil {
		b.WriteString("\n")
		b.WriteString(m.notificationsView())
	}

	b.WriteString(helpStyle.Render(FormatKey("q/esc", "quit")))
	return b.String()
}

func (m WatchModel) status() string {
	switch {
	case m.err != nil:
		return dangerStyle.Render("stream error: " + m.err.Error())
	case m.ended:
		return warningStyle.Render("stream ended")
	case m.live:
		return liveStyle.Render("● live")
	default:
		return mutedStyle.Render("○ waiting for updates")
	}
}

func (m WatchModel) notificationsView() string {
	var b strings.Builder

	channel := mutedStyle.Render("offline")
	if m.connected {
		channel = liveStyle.Render("connected")
	}
	b.WriteString(fmt.Sprintf("Notifications (%d unread, %s)\n", m.unread, channel))

	if len(m.notifications) == 0 {
		b.WriteString(mutedStyle.Render("Nothing yet"))
		return boxStyle.Render(b.String()) + "\n"
	}

	for i, n := range m.notifications {
		if i == notificationsShown {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", len(m.notifications)-notificationsShown)))
			break
		}
		b.WriteString(readMarker(n.State))
		b.WriteString(" ")
		b.WriteString(n.Title)
		if n.Message != "" {
			b.WriteString(mutedStyle.Render(" " + n.Message))
		}
		b.WriteString("\n")
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func readMarker(state constant.ReadState) string {
	switch state {
	case constant.Unread:
		return infoStyle.Render("●")
	case constant.PendingRead:
		return warningStyle.Render("◐")
	default:
		return mutedStyle.Render("○")
	}
}

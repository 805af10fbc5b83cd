package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/Skotchmaster/sweet_shop/internal/logging"
	authmw "github.com/Skotchmaster/sweet_shop/internal/middleware/auth"
	"github.com/Skotchmaster/sweet_shop/internal/notify"
	"github.com/Skotchmaster/sweet_shop/internal/policy"
	"github.com/Skotchmaster/sweet_shop/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// FeedHandler streams hub events to websocket clients.
type FeedHandler struct {
	Hub            *notify.Hub
	AllowedOrigins []string
}

func (h *FeedHandler) upgrader() websocket.Upgrader {
	u := websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	if len(h.AllowedOrigins) > 0 {
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if lo.Contains(h.AllowedOrigins, "*") || lo.Contains(h.AllowedOrigins, origin) {
				return true
			}
			o, err := url.Parse(origin)
			return err == nil && strings.EqualFold(o.Host, r.Host)
		}
	}
	return u
}

func (h *FeedHandler) Inventory(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "InventoryFeed")

	if err := service.Authorize(policy.InventoryFeed, authmw.ActorFrom(c)); err != nil {
		return fail(l, "inventory_feed_error", err)
	}
	return h.stream(c, notify.TopicInventory)
}

func (h *FeedHandler) Notifications(c echo.Context) error {
	u := authmw.UserFrom(c)
	return h.stream(c, notify.UserTopic(u.ID))
}

func (h *FeedHandler) stream(c echo.Context, topic string) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Feed", "topic", topic)

	up := h.upgrader()
	conn, err := up.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already answered the request
		l.Warn("ws_upgrade_error", "error", err)
		return nil
	}
	defer conn.Close()

	sub := h.Hub.Subscribe(topic)
	defer sub.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(echo.Map{"type": "connection_success", "message": "Connected to notifications"}); err != nil {
		return nil
	}
	l.Info("ws_connected")

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				l.Warn("ws_write_error", "error", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-closed:
			l.Info("ws_disconnected")
			return nil
		}
	}
}

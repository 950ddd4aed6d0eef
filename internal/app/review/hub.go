package review

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
)

//WsConn is interface for websocket handling in review service
type WsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
}

const writeWait = 10 * time.Second

type event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// subscriber serializes writes to one connection
type subscriber struct {
	userID string
	m      sync.Mutex
}

//Hub keeps websocket subscribers by user ID and pushes job changes and notifications to them
type Hub struct {
	m           sync.Mutex
	userConns   map[string]map[WsConn]bool
	connections map[WsConn]*subscriber
}

//NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{userConns: make(map[string]map[WsConn]bool), connections: make(map[WsConn]*subscriber)}
}

//Deliver pushes the notification to the user's subscribers
func (h *Hub) Deliver(ctx context.Context, n *persistence.Notification) error {
	return h.send(n.UserID, &event{Type: "notification", Data: n})
}

//JobChanged pushes the job to the owner's subscribers
func (h *Hub) JobChanged(j *persistence.Job) {
	cmdapp.LogIf(h.send(j.OwnerID, &event{Type: "job", Data: j}))
}

//JobDeleted tells the owner's subscribers the job is gone
func (h *Hub) JobDeleted(j *persistence.Job) {
	cmdapp.LogIf(h.send(j.OwnerID, &event{Type: "job_deleted", Data: map[string]string{"id": j.ID}}))
}

type target struct {
	conn WsConn
	sub  *subscriber
}

func (h *Hub) targets(userID string) []target {
	h.m.Lock()
	defer h.m.Unlock()
	res := make([]target, 0, len(h.userConns[userID]))
	for c := range h.userConns[userID] {
		res = append(res, target{conn: c, sub: h.connections[c]})
	}
	return res
}

// send writes outside of the hub lock, a slow connection delays only its own writes
func (h *Hub) send(userID string, e *event) error {
	var res error
	for _, t := range h.targets(userID) {
		cmdapp.Log.Debugf("Sending %s to %s", e.Type, userID)
		if err := write(t, e); err != nil {
			res = err
		}
	}
	return res
}

func write(t target, e *event) error {
	t.sub.m.Lock()
	defer t.sub.m.Unlock()
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return errors.Wrap(err, "Cannot set write deadline")
	}
	if err := t.conn.WriteJSON(e); err != nil {
		cmdapp.LogIf(t.conn.Close())
		return errors.Wrap(err, "Cannot write to websocket")
	}
	return nil
}

func (h *Hub) handleConnection(conn WsConn) {
	defer h.deleteConnection(conn)
	defer conn.Close()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			cmdapp.Log.Debug(err)
			break
		}
		h.saveConnection(conn, string(message))
	}
	cmdapp.Log.Debugf("handleConnection finish")
}

func (h *Hub) deleteConnection(conn WsConn) {
	h.m.Lock()
	defer h.m.Unlock()
	h.unsubscribe(conn)
	delete(h.connections, conn)
}

func (h *Hub) unsubscribe(conn WsConn) {
	s, found := h.connections[conn]
	if !found {
		return
	}
	if conns, found := h.userConns[s.userID]; found {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.userConns, s.userID)
		}
	}
}

func (h *Hub) saveConnection(conn WsConn, userID string) {
	h.m.Lock()
	defer h.m.Unlock()
	h.unsubscribe(conn)
	s, found := h.connections[conn]
	if !found {
		s = &subscriber{}
		h.connections[conn] = s
	}
	s.userID = userID
	conns, found := h.userConns[userID]
	if !found {
		conns = map[WsConn]bool{}
		h.userConns[userID] = conns
	}
	conns[conn] = true
	cmdapp.Log.Infof("Subscribed %s, connections: %d", userID, len(h.connections))
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

type websocketHandler struct {
	hub *Hub
}

func (h websocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmdapp.Log.Infof("ws request from %s", r.Host)
	c, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		cmdapp.Log.Error(errors.Wrap(err, "Can not init ws connection"))
		return
	}
	go h.hub.handleConnection(c)
}

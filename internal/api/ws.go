package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sprite-ai/autotag/internal/config"
	"github.com/sprite-ai/autotag/internal/detect"
	"github.com/sprite-ai/autotag/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // local tooling only
	},
}

// WebSocket message types from client.
const (
	wsMsgConfigure = "configure"
	wsMsgCommit    = "commit"
	wsMsgReset     = "reset"
)

// WebSocket message types to client.
const (
	wsMsgConfigured     = "configured"
	wsMsgClassification = "classification"
	wsMsgError          = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsConfigure is the payload for "configure" messages.
type wsConfigure struct {
	Detectors string `json:"detectors"`
}

// wsConfiguredResponse lists the detectors now in use.
type wsConfiguredResponse struct {
	Detectors []string `json:"detectors"`
}

// classifySession accumulates commits and reclassifies after each one.
type classifySession struct {
	detectors *detect.Set
	commits   []model.Commit
}

func (s *classifySession) classification() classifyResponse {
	return newClassifyResponse(len(s.commits), s.detectors.Evaluate(s.commits))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	log := s.log.WithField("remote", r.RemoteAddr)
	session := &classifySession{detectors: s.detectors}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read")
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sendWSError(log, conn, "invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgConfigure:
			s.handleWSConfigure(log, conn, session, msg.Data)
		case wsMsgCommit:
			handleWSCommit(log, conn, session, msg.Data)
		case wsMsgReset:
			session.commits = nil
			sendWSMessage(log, conn, wsMsgClassification, session.classification())
		default:
			sendWSError(log, conn, "unknown message type: "+msg.Type)
		}
	}
}

func (s *Server) handleWSConfigure(log logrus.FieldLogger, conn *websocket.Conn, session *classifySession, data json.RawMessage) {
	var req wsConfigure
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(log, conn, "invalid configure data")
		return
	}

	set, err := config.BuildDetectors([]byte(req.Detectors), s.log)
	if err != nil {
		sendWSError(log, conn, err.Error())
		return
	}
	session.detectors = set

	resp := wsConfiguredResponse{Detectors: []string{}}
	for _, d := range set.Detectors() {
		resp.Detectors = append(resp.Detectors, d.Name())
	}
	sendWSMessage(log, conn, wsMsgConfigured, resp)
	if len(session.commits) > 0 {
		sendWSMessage(log, conn, wsMsgClassification, session.classification())
	}
}

func handleWSCommit(log logrus.FieldLogger, conn *websocket.Conn, session *classifySession, data json.RawMessage) {
	var req commitJSON
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(log, conn, "invalid commit data")
		return
	}

	id := req.ID
	if id == "" {
		id = strconv.Itoa(len(session.commits))
	}
	session.commits = append(session.commits, model.Commit{ID: model.CommitRef(id), Message: req.Message})
	sendWSMessage(log, conn, wsMsgClassification, session.classification())
}

func sendWSMessage(log logrus.FieldLogger, conn *websocket.Conn, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.WithError(err).Warn("ws marshal")
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}
	if err := conn.WriteJSON(msg); err != nil {
		log.WithError(err).Warn("ws write")
	}
}

func sendWSError(log logrus.FieldLogger, conn *websocket.Conn, errMsg string) {
	sendWSMessage(log, conn, wsMsgError, map[string]string{"message": errMsg})
}

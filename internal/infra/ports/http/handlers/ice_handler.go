package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pion/webrtc/v4"

	"github.com/qrave1/RoomMeet/internal/application/config"
)

const turnCredentialTTL = time.Hour

type IceHandler struct {
	cfg *config.Config
	now func() time.Time
}

func NewIceHandler(cfg *config.Config) *IceHandler {
	return &IceHandler{cfg: cfg, now: time.Now}
}

// IceServers выдаёт STUN-серверы и, если настроен coturn, TURN с временными кредами
func (h *IceHandler) IceServers(c echo.Context) error {
	servers := make([]webrtc.ICEServer, 0, 2)

	if len(h.cfg.STUNURLs) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: h.cfg.STUNURLs})
	}

	if h.cfg.CoturnServer.Enabled() {
		turn := webrtc.ICEServer{
			URLs: append(
				append([]string{}, h.cfg.TurnUDPServer.URLs...),
				h.cfg.TurnTCPServer.URLs...,
			),
			Username:   h.cfg.CoturnServer.Username,
			Credential: h.cfg.CoturnServer.Password,
		}

		// Временные креды по схеме coturn static-auth-secret
		if h.cfg.CoturnServer.Secret != "" {
			username := strconv.FormatInt(h.now().Add(turnCredentialTTL).Unix(), 10)

			mac := hmac.New(sha1.New, []byte(h.cfg.CoturnServer.Secret))
			mac.Write([]byte(username))

			turn.Username = username
			turn.Credential = base64.StdEncoding.EncodeToString(mac.Sum(nil))
		}

		servers = append(servers, turn)
	}

	return c.JSON(http.StatusOK, servers)
}

package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"

	"mousemaze/level"
	"mousemaze/protocol"
)

const (
	qrSize   = 256
	banner   = "you are looking at the websocket server. connect to /ws to send and receive messages."
	statDays = 7
)

func newUpgrader(allowed []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // Non-browser clients don't send Origin
			}
			for _, a := range allowed {
				if a == "*" || a == origin {
					return true
				}
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return u.Host == r.Host
		},
	}
}

// SetupRoutes configures HTTP routes. admin may be nil.
func SetupRoutes(hub *Hub, cfg Config, analytics *Analytics, admin *Admin) http.Handler {
	upgrader := newUpgrader(cfg.AllowedOrigins)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(banner))
	})

	// WebSocket endpoint
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		skin := parseSkin(r.URL.Query().Get(protocol.SkinParam))
		client := NewClient(hub, conn, ip, skin)
		hub.submit(hubEvent{kind: evConnect, from: client})

		go client.WritePump()
		go client.ReadPump()
	})

	r.Get("/qr.png", func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if target == "" {
			target = cfg.PublicURL
		}
		if target == "" {
			target = "http://" + r.Host + "/"
		}
		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "cannot encode url", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Logger)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]interface{}{"status": "ok", "peers": hub.PeerCount()})
		})

		api.Get("/levels", func(w http.ResponseWriter, r *http.Request) {
			metas := make([]level.Meta, 0)
			for _, name := range level.Names() {
				m, _ := level.Lookup(name)
				metas = append(metas, m)
			}
			writeJSON(w, metas)
		})

		if admin != nil {
			api.With(admin.Middleware).Get("/stats", statsHandler(hub, analytics))
		}
	})

	return r
}

// StatsResponse is returned by /api/stats
type StatsResponse struct {
	Peers  int            `json:"peers"`
	Conns  int            `json:"conns"`
	Events map[string]int `json:"events"`
	Daily  []DayCount     `json:"daily"`
	Skins  []SkinCount    `json:"skins"`
}

func statsHandler(hub *Hub, analytics *Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatsResponse{Peers: hub.PeerCount(), Conns: hub.TotalConns()}
		if analytics != nil {
			var err error
			if resp.Events, err = analytics.EventCounts(statDays); err != nil {
				log.Printf("stats: event counts: %v", err)
			}
			if resp.Daily, err = analytics.DailyActiveHistory(statDays); err != nil {
				log.Printf("stats: daily history: %v", err)
			}
			if resp.Skins, err = analytics.SkinPopularity(10); err != nil {
				log.Printf("stats: skins: %v", err)
			}
		}
		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

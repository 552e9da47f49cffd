package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/wscgames/scavbot/internal/chain"
	"github.com/wscgames/scavbot/internal/game"
	"github.com/wscgames/scavbot/internal/leaderboard"
	"github.com/wscgames/scavbot/internal/rules"
	"github.com/wscgames/scavbot/internal/session"
	"github.com/wscgames/scavbot/internal/store"
)

// Defaults can be overridden via environment variables:
//   PORT / SCAVBOT_PORT   (default: 8090)
//   DATA_FILE             (default: data/scavbot.json)
//   LEADERBOARD_DB        (default: data/leaderboard.db)
//   CHAIN_API_BASE        (empty: offline no-op chain)
//   CHAIN_ADMIN_ADDR      admin wallet for transfers
//   ADMIN_ID              user id allowed to backup/reset
//   RULESET               canonical (default) or legacy

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = getenv("SCAVBOT_PORT", "8090")
	}
	listenAddr := ":" + port
	dataFile := getenv("DATA_FILE", "data/scavbot.json")
	boardPath := getenv("LEADERBOARD_DB", "data/leaderboard.db")
	adminID := os.Getenv("ADMIN_ID")

	rs := rules.FromEnv()

	snap := store.NewFile(dataFile)
	st, err := snap.LoadSnapshot()
	if err != nil {
		log.Fatalf("load %s: %v", dataFile, err)
	}
	log.Printf("loaded %d players from %s", len(st.Players), dataFile)

	board, err := leaderboard.OpenSQLite(boardPath)
	if err != nil {
		log.Fatalf("open leaderboard %s: %v", boardPath, err)
	}
	defer board.Close()

	var svc chain.Service = chain.Noop{}
	if base := os.Getenv("CHAIN_API_BASE"); base != "" {
		svc = chain.NewClient(base, os.Getenv("CHAIN_ADMIN_ADDR"))
		log.Printf("chain service at %s", base)
	} else {
		log.Printf("no CHAIN_API_BASE set, chain calls run offline")
	}

	mgr := session.NewManager(rs, st, snap, board, svc, adminID, game.NewRoller(time.Now().UnixNano()), nil)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"version": buildVersion, "time": buildTime})
	})
	r.HandleFunc("/leaderboard", func(w http.ResponseWriter, req *http.Request) {
		n, _ := strconv.Atoi(req.URL.Query().Get("n"))
		if n <= 0 || n > 100 {
			n = 10
		}
		var top []leaderboard.Entry
		if req.URL.Query().Get("by") == "rounds" {
			top = board.TopByRounds(n)
		} else {
			top = board.TopByFloor(n)
		}
		writeJSON(w, top)
	})
	r.HandleFunc("/ws", session.WSHandler(mgr))

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(adminOnly(adminID))
	admin.HandleFunc("/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, mgr.State())
	}).Methods(http.MethodGet)
	admin.HandleFunc("/reset", func(w http.ResponseWriter, _ *http.Request) {
		if err := mgr.Reset(adminID); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodPost)

	go func() {
		t := time.NewTicker(rs.RegenSweepInterval)
		defer t.Stop()
		for range t.C {
			mgr.SweepRegen()
			mgr.ExpireIdle()
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		log.Printf("got %v, saving and shutting down", s)
		if err := snap.SaveSnapshot(mgr.State()); err != nil {
			log.Printf("final save: %v", err)
		}
		os.Exit(0)
	}()

	log.Printf("scavbot listening on %s (data=%s)", listenAddr, dataFile)
	log.Fatal(http.ListenAndServe(listenAddr, r))
}

func adminOnly(adminID string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if adminID == "" || req.Header.Get("X-Admin-Id") != adminID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// app.go
package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"stylescope/internal/api"
	"stylescope/internal/channel"
	"stylescope/internal/config"
	"stylescope/internal/eventhub"
	"stylescope/internal/explore"
	"stylescope/internal/store"
	"stylescope/internal/stream"
	"stylescope/internal/tree"
	"stylescope/internal/watcher"
)

// App contains the core application state and managers.
type App struct {
	ctx    context.Context
	mu     sync.RWMutex
	config *config.Config

	cache      *store.Cache
	apiClient  *api.Client
	eventHub   *eventhub.EventHub
	manager    *explore.Manager
	refWatcher *watcher.ReferenceWatcher

	sessionID         string
	session           *api.Session
	nodes             []tree.ExplorationNode
	currentSnapshotID string
	referenceStale    bool
}

// NewApp creates a new App.
func NewApp() *App {
	return &App{}
}

// Startup loads configuration and opens the local tree cache.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.config = cfg

	cache, err := store.Open(cfg.CachePath)
	if err != nil {
		log.Printf("[App] Failed to open tree cache: %v", err)
	} else {
		a.cache = cache
	}

	a.apiClient = api.NewClient(cfg.Settings.ServerURL)
	a.eventHub = eventhub.New(ctx)
	return nil
}

// SetServerURL overrides the configured server base URL, as when the user
// passes --server on the command line. Call before opening a session.
func (a *App) SetServerURL(url string) {
	a.config.Settings.ServerURL = url
	a.apiClient = api.NewClient(url)
}

// SetBroadcaster attaches the event delivery surface.
func (a *App) SetBroadcaster(b eventhub.Broadcaster) {
	a.eventHub.SetBroadcaster(b)
}

// channelDialer adapts the websocket channel package to the exploration
// manager's Dialer interface.
type channelDialer struct {
	baseURL string
}

func (d channelDialer) Dial(sessionID string, onFrame func(raw []byte)) (explore.Channel, error) {
	return channel.Dial(d.baseURL, sessionID, onFrame)
}

// OpenSession loads a session: cached tree first for instant display, then
// the authoritative session resource and node list from the server. The
// reference image watcher starts if one is configured.
func (a *App) OpenSession(sessionID string) error {
	a.mu.Lock()
	a.sessionID = sessionID
	a.referenceStale = false
	a.manager = explore.NewManager(sessionID, a.apiClient,
		channelDialer{baseURL: a.config.Settings.ServerURL}, a.eventHub)
	a.mu.Unlock()

	if a.cache != nil {
		nodes, currentID, err := a.cache.LoadTree(sessionID)
		if err == nil {
			a.setTree(nodes, currentID)
			a.eventHub.EmitTreeUpdated(eventhub.TreeUpdatedEvent{
				SessionID:         sessionID,
				NodeCount:         len(nodes),
				CurrentSnapshotID: currentID,
				FromCache:         true,
			})
		} else if err != store.ErrNotCached {
			log.Printf("[App] Cached tree unreadable for %s: %v", sessionID, err)
		}
	}

	session, err := a.apiClient.GetSession(a.ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	a.manager.ObserveStatus(session.Status)
	a.eventHub.EmitSessionStatus(eventhub.SessionStatusEvent{
		SessionID: sessionID,
		Status:    string(session.Status),
	})

	if err := a.RefreshTree(); err != nil {
		return err
	}

	a.startReferenceWatcher()
	return nil
}

// startReferenceWatcher begins watching the configured reference image.
func (a *App) startReferenceWatcher() {
	path := a.config.Settings.ReferenceImage
	if path == "" {
		return
	}

	w, err := watcher.New(path, 300*time.Millisecond, func(c watcher.Change) {
		a.mu.Lock()
		a.referenceStale = true
		a.mu.Unlock()

		log.Printf("[App] Reference image %s: %s", c.Kind, c.Path)
		a.eventHub.EmitReferenceChanged(eventhub.ReferenceChangedEvent{
			Path: c.Path,
			Kind: string(c.Kind),
		})
	})
	if err != nil {
		log.Printf("[App] Reference watcher unavailable: %v", err)
		return
	}
	if err := w.Start(); err != nil {
		log.Printf("[App] Reference watcher start: %v", err)
		w.Close()
		return
	}
	a.refWatcher = w
}

// RefreshTree refetches the authoritative node list and updates the cache.
func (a *App) RefreshTree() error {
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()
	if sessionID == "" {
		return fmt.Errorf("no session open")
	}

	resp, err := a.apiClient.GetExplorationTree(a.ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get exploration tree: %w", err)
	}

	a.setTree(resp.AllNodes, resp.CurrentSnapshotID)
	if a.cache != nil {
		if err := a.cache.SaveTree(sessionID, resp.CurrentSnapshotID, resp.AllNodes); err != nil {
			log.Printf("[App] Failed to cache tree for %s: %v", sessionID, err)
		}
	}
	a.eventHub.EmitTreeUpdated(eventhub.TreeUpdatedEvent{
		SessionID:         sessionID,
		NodeCount:         len(resp.AllNodes),
		CurrentSnapshotID: resp.CurrentSnapshotID,
	})
	return nil
}

func (a *App) setTree(nodes []tree.ExplorationNode, currentSnapshotID string) {
	a.mu.Lock()
	a.nodes = nodes
	a.currentSnapshotID = currentSnapshotID
	a.mu.Unlock()
}

// StartExploration runs an exploration of count variants and refreshes the
// tree once the authoritative result lands.
func (a *App) StartExploration(count int) error {
	a.mu.RLock()
	manager := a.manager
	a.mu.RUnlock()
	if manager == nil {
		return fmt.Errorf("no session open")
	}

	if err := manager.Start(a.ctx, count); err != nil {
		return err
	}
	return a.RefreshTree()
}

// StopExploration requests cancellation of the in-flight run.
func (a *App) StopExploration() error {
	a.mu.RLock()
	manager := a.manager
	a.mu.RUnlock()
	if manager == nil {
		return fmt.Errorf("no session open")
	}
	return manager.Stop(a.ctx)
}

// ToggleFavorite flips a snapshot's favorite flag and updates the local copy.
func (a *App) ToggleFavorite(snapshotID string) error {
	node, err := a.apiClient.ToggleFavorite(a.ctx, snapshotID)
	if err != nil {
		return fmt.Errorf("toggle favorite: %w", err)
	}

	a.mu.Lock()
	for i := range a.nodes {
		if a.nodes[i].ID == node.ID {
			a.nodes[i] = *node
			break
		}
	}
	a.mu.Unlock()
	return nil
}

// SelectSnapshot makes a snapshot the session's current one.
func (a *App) SelectSnapshot(snapshotID string) error {
	a.mu.RLock()
	sessionID := a.sessionID
	a.mu.RUnlock()
	if sessionID == "" {
		return fmt.Errorf("no session open")
	}

	if err := a.apiClient.SelectSnapshot(a.ctx, sessionID, snapshotID); err != nil {
		return fmt.Errorf("select snapshot: %w", err)
	}
	a.mu.Lock()
	a.currentSnapshotID = snapshotID
	a.mu.Unlock()
	return nil
}

// LiveState returns the manager's live exploration state.
func (a *App) LiveState() stream.LiveState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.manager == nil {
		return stream.NewLiveState()
	}
	return a.manager.Live()
}

// Diagnostics returns the manager's diagnostic log.
func (a *App) Diagnostics() []stream.DiagEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.manager == nil {
		return nil
	}
	return a.manager.Diagnostics()
}

// ReferenceStale reports whether the reference image changed since the
// session was opened.
func (a *App) ReferenceStale() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.referenceStale
}

// geometry builds the layout geometry from settings.
func (a *App) geometry() tree.Geometry {
	s := a.config.Settings
	return tree.Geometry{
		NodeWidth:     s.NodeWidth,
		NodeHeight:    s.NodeHeight,
		HorizontalGap: s.HorizontalGap,
		VerticalGap:   s.VerticalGap,
	}
}

// RenderTree lays out the current forest and returns a plain-text listing,
// one node per line in traversal order with its coordinates and score.
func (a *App) RenderTree() string {
	a.mu.RLock()
	nodes := append([]tree.ExplorationNode(nil), a.nodes...)
	currentID := a.currentSnapshotID
	a.mu.RUnlock()

	roots := tree.BuildForest(nodes)
	bounds := tree.Layout(roots, a.geometry())

	var b strings.Builder
	fmt.Fprintf(&b, "%d nodes, canvas %.0fx%.0f\n", len(nodes), bounds.Width, bounds.Height)

	var walk func(n *tree.LayoutNode, depth int)
	walk = func(n *tree.LayoutNode, depth int) {
		marker := " "
		if n.Node.ID == currentID {
			marker = "*"
		}
		fav := ""
		if n.Node.IsFavorite {
			fav = " ♥"
		}
		score := "-"
		if n.Node.CombinedScore != nil {
			score = fmt.Sprintf("%.2f", *n.Node.CombinedScore)
		}
		fmt.Fprintf(&b, "%s %s%s (%.0f,%.0f) %s score=%s%s\n",
			marker, strings.Repeat("  ", depth), n.Node.ID, n.X, n.Y,
			n.Node.MutationStrategy, score, fav)
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return b.String()
}

// FavoriteNodes returns the favorited snapshots, best score first.
func (a *App) FavoriteNodes() []tree.ExplorationNode {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var favorites []tree.ExplorationNode
	for _, n := range a.nodes {
		if n.IsFavorite {
			favorites = append(favorites, n)
		}
	}
	sort.SliceStable(favorites, func(i, j int) bool {
		si, sj := favorites[i].CombinedScore, favorites[j].CombinedScore
		if si == nil {
			return false
		}
		if sj == nil {
			return true
		}
		return *si > *sj
	})
	return favorites
}

// Shutdown tears the view down: live state is discarded, the channel closes,
// the watcher and the cache are released.
func (a *App) Shutdown() {
	a.mu.RLock()
	manager := a.manager
	refWatcher := a.refWatcher
	cache := a.cache
	a.mu.RUnlock()

	if manager != nil {
		manager.Reset()
	}
	if refWatcher != nil {
		refWatcher.Close()
	}
	if cache != nil {
		cache.Close()
	}
}

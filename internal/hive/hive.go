// Package hive implements the public façade of spec.md §4.6: metadata CRUD,
// key CRUD, connection acquisition, and status control, orchestrating the
// metadata gateways, the per-dimension directories, the assigner, the lock
// engine, and the sync daemon. It also plays the role of spec.md §4.3's
// "directory façade" — every mutating key operation resolves names to
// entities here and checks writability before calling into
// internal/directory. InsertResourceId, InsertSecondaryIndexKey, and
// UpdatePrimaryIndexKeyOfResourceId run the lock engine over the target
// key's semaphores (hive, node, and key scopes); InsertPrimaryIndexKey
// checks the hive scope and assigns only writable nodes; updates of a key's
// read-only flag and the delete operations check the hive scope only.
//
// Grounded on cmd/coordinator/main.go's server struct (one mutex-guarded
// struct holding the registry, the node list, and the HTTP handlers that
// orchestrate them) and internal/coordinator/shard_registry.go's
// validate-then-mutate-then-swap-then-return-copy method shape, generalized
// from an HTTP handler's request/response cycle to a library's exported
// method calls.
package hive

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dreamware/hivedir/internal/assigner"
	"github.com/dreamware/hivedir/internal/connsource"
	"github.com/dreamware/hivedir/internal/directory"
	"github.com/dreamware/hivedir/internal/gateway"
	"github.com/dreamware/hivedir/internal/hiveerr"
	"github.com/dreamware/hivedir/internal/hivelog"
	"github.com/dreamware/hivedir/internal/metadata"
	"github.com/dreamware/hivedir/internal/metrics"
)

// Hive is one logical partitioned deployment: a metadata database plus a set
// of data nodes, reachable through one façade instance per process. Multiple
// processes may share the same hive metadata database; each keeps its own
// Hive value and converges via sync (internal/syncd).
type Hive struct {
	hiveURI string
	db      *sql.DB
	dialect gateway.Dialect

	gw       gateways
	conns    *connsource.Source
	assigner *assigner.Registry
	metrics  metrics.Sink
	log      *hivelog.Logger

	mu    sync.RWMutex
	g     *graph
	dirs  map[string]*directory.Directory // dimension name -> its Directory
}

// Option configures optional collaborators on New.
type Option func(*Hive)

// WithMetrics wires an observability sink. Without this option, metrics
// calls are no-ops.
func WithMetrics(sink metrics.Sink) Option {
	return func(h *Hive) { h.metrics = sink }
}

// WithLogger overrides the default logger.
func WithLogger(log *hivelog.Logger) Option {
	return func(h *Hive) { h.log = log }
}

// WithAssignerRegistry overrides the default assigner registry, e.g. to
// register additional named policies before Load.
func WithAssignerRegistry(reg *assigner.Registry) Option {
	return func(h *Hive) { h.assigner = reg }
}

// Load bootstraps a Hive against hiveURI (spec.md §6's `load(uri)`),
// connecting to the hive metadata database, loading the full metadata graph,
// and preparing (but not starting) a Directory per dimension. Fails
// MetadataMissing if the hive_semaphore singleton row has never been
// created — run an installer first.
func Load(ctx context.Context, hiveURI string, conns *connsource.Source, opts ...Option) (*Hive, error) {
	dialect, err := gateway.DialectForURI(hiveURI)
	if err != nil {
		return nil, fmt.Errorf("hive: %w", err)
	}
	db, err := conns.Open(hiveURI)
	if err != nil {
		return nil, fmt.Errorf("hive: open metadata database: %w", err)
	}

	h := &Hive{
		hiveURI:  hiveURI,
		db:       db,
		dialect:  dialect,
		conns:    conns,
		assigner: assigner.NewRegistry(),
		metrics:  metrics.NoopSink{},
		log:      hivelog.New(logrus.InfoLevel),
		dirs:     make(map[string]*directory.Directory),
	}
	h.gw = gateways{
		dimensions: gateway.NewDimensionGateway(db, dialect),
		resources:  gateway.NewResourceGateway(db, dialect),
		indexes:    gateway.NewIndexGateway(db, dialect),
		nodes:      gateway.NewNodeGateway(db, dialect),
		semaphore:  gateway.NewHiveSemaphoreGateway(db, dialect),
	}
	for _, opt := range opts {
		opt(h)
	}

	g, err := loadGraph(ctx, h.gw)
	if err != nil {
		return nil, err
	}
	h.g = g
	if err := h.rebuildDirectories(ctx, g); err != nil {
		return nil, err
	}
	return h, nil
}

// Install creates the hive_semaphore singleton row, bootstrapping a brand
// new hive metadata database. Callers typically run this once, then Load.
func Install(ctx context.Context, hiveURI string, conns *connsource.Source) error {
	dialect, err := gateway.DialectForURI(hiveURI)
	if err != nil {
		return fmt.Errorf("hive: %w", err)
	}
	db, err := conns.Open(hiveURI)
	if err != nil {
		return fmt.Errorf("hive: open metadata database: %w", err)
	}
	if err := installMetadataSchema(ctx, db, dialect); err != nil {
		return err
	}
	_, err = gateway.NewHiveSemaphoreGateway(db, dialect).CreateSingleton(ctx)
	return err
}

// snapshot returns the currently visible graph. Readers hold this reference
// for the duration of one operation; sync() never mutates it in place.
func (h *Hive) snapshot() *graph {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.g
}

// directoryFor returns the Directory for dimensionName as built by the last
// rebuildDirectories. Fails NotFound if the dimension has none.
func (h *Hive) directoryFor(dimensionName string) (*directory.Directory, error) {
	h.mu.RLock()
	d, ok := h.dirs[dimensionName]
	h.mu.RUnlock()
	if !ok {
		return nil, nameNotFound("hive.directoryFor", "dimension", dimensionName)
	}
	return d, nil
}

// rebuildDirectories ensures every dimension in g has a Directory, schema
// installed, and every resource/secondary-index table registered. Called
// once at Load and again after every successful sync, so a Directory newly
// added by another process becomes usable here without a restart.
func (h *Hive) rebuildDirectories(ctx context.Context, g *graph) error {
	next := make(map[string]*directory.Directory, len(g.dimensions))
	for name, dim := range g.dimensions {
		indexURI := dim.IndexURI
		if indexURI == "" {
			indexURI = h.hiveURI
		}
		dialect, err := gateway.DialectForURI(indexURI)
		if err != nil {
			return fmt.Errorf("hive: dimension %q: %w", name, err)
		}
		db, err := h.conns.Open(indexURI)
		if err != nil {
			return fmt.Errorf("hive: dimension %q: open directory database: %w", name, err)
		}
		d := directory.NewDirectory(db, dialect, dim.KeyType)
		if err := d.EnsureSchema(ctx); err != nil {
			return err
		}
		for _, res := range g.resources {
			if res.DimensionName != name {
				continue
			}
			if err := d.RegisterResource(ctx, res.Name, res.KeyType, res.IsPartitioningResource); err != nil {
				return err
			}
			for _, idx := range g.indexes[resourceKey(name, res.Name)] {
				if err := d.RegisterSecondaryIndex(ctx, res.Name, idx.Name, idx.ColumnType); err != nil {
					return err
				}
			}
		}
		next[name] = d
	}
	h.mu.Lock()
	h.dirs = next
	h.mu.Unlock()
	return nil
}

// ForceSynchronize implements syncd.Reloader: reload the metadata graph if
// the persisted revision has advanced past the local one, swapping it in
// atomically (spec.md §4.7).
func (h *Hive) ForceSynchronize(ctx context.Context) error {
	const op = "Hive.ForceSynchronize"
	sem, err := h.gw.semaphore.Load(ctx)
	if err != nil {
		return err
	}
	h.mu.RLock()
	localRevision := h.g.revision
	h.mu.RUnlock()
	if sem.Revision == localRevision {
		return nil
	}

	g, err := loadGraph(ctx, h.gw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := h.rebuildDirectories(ctx, g); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	h.mu.Lock()
	h.g = g
	h.mu.Unlock()
	h.log.Infof("synchronized metadata graph: revision %d -> %d", localRevision, g.revision)
	return nil
}

// Close is a no-op: every database pool the hive uses belongs to the
// connsource.Source passed to Load. The embedding process owns that Source
// and is responsible for calling its own Close once every Hive using it has
// stopped.
func (h *Hive) Close() error {
	return nil
}

func requireWritableHive(op string, hiveStatus metadata.Status) error {
	if !hiveStatus.Writable() {
		return hiveerr.ReadOnlyErr(op, "", "hive", "hive is read-only")
	}
	return nil
}

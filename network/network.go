package network

import (
	"sort"
	"strconv"
	"sync"

	"github.com/gatcore/gat/core"
)

// Network is a directed multigraph over buses, with generators, loads,
// and shunts attached by bus ID, and branches as edges. It owns every
// node and edge added to it; solvers borrow an immutable reference and
// must not retain it beyond the call (spec §5).
type Network struct {
	mu sync.RWMutex

	// BaseMVA is the system's power base, in MVA. Must be > 0.
	BaseMVA float64

	buses      map[int]*Bus
	generators map[string]*Generator
	loads      map[string]*Load
	branches   map[string]*Branch
	shunts     []*Shunt

	slackBusID  int
	slackIsSet  bool

	// topology tracks bus connectivity via the teacher's core.Graph,
	// recovering adjacency without self-referential pointers between
	// buses and their incident branches: vertex IDs are
	// strconv.Itoa(Bus.ID), edge IDs are Branch.Name.
	topology *core.Graph
}

// New creates an empty Network at the given system base MVA. A non-positive
// baseMVA is replaced with DefaultBaseMVA.
func New(baseMVA float64) *Network {
	if baseMVA <= 0 {
		baseMVA = DefaultBaseMVA
	}

	return &Network{
		BaseMVA:    baseMVA,
		buses:      make(map[int]*Bus),
		generators: make(map[string]*Generator),
		loads:      make(map[string]*Load),
		branches:   make(map[string]*Branch),
		slackBusID: -1,
		topology:   core.NewGraph(core.WithMultiEdges(), core.WithLoops()),
	}
}

func busVertexID(id int) string { return strconv.Itoa(id) }

// AddBus inserts a bus. Zero-value VM/VMin/VMax are replaced with their
// documented defaults. Returns ErrDuplicateBus if the ID is already used,
// ErrInvalidBaseKV if BaseKV <= 0.
func (n *Network) AddBus(b Bus) error {
	if b.BaseKV <= 0 {
		return ErrInvalidBaseKV
	}
	if b.VM == 0 {
		b.VM = DefaultVM
	}
	if b.VMin == 0 && b.VMax == 0 {
		b.VMin, b.VMax = DefaultVMin, DefaultVMax
	}
	if b.VMin > b.VMax {
		return ErrInvalidVoltageBounds
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.buses[b.ID]; exists {
		return ErrDuplicateBus
	}
	bus := b
	n.buses[b.ID] = &bus

	return n.topology.AddVertex(busVertexID(b.ID))
}

// AddGenerator attaches a generator to an existing bus.
func (n *Network) AddGenerator(g Generator) error {
	if g.PMin > g.PMax {
		return ErrInvalidGenBounds
	}
	if g.QMin > g.QMax {
		return ErrInvalidGenBounds
	}
	if g.Status && g.ActiveMW < 0 {
		return ErrNegativeDispatch
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.buses[g.BusID]; !ok {
		return ErrBusNotFound
	}
	gen := g
	n.generators[g.Name] = &gen

	return nil
}

// AddLoad attaches a load to an existing bus.
func (n *Network) AddLoad(l Load) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.buses[l.BusID]; !ok {
		return ErrBusNotFound
	}
	load := l
	n.loads[l.Name] = &load

	return nil
}

// AddShunt attaches a fixed shunt admittance to an existing bus.
func (n *Network) AddShunt(s Shunt) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.buses[s.BusID]; !ok {
		return ErrBusNotFound
	}
	shunt := s
	n.shunts = append(n.shunts, &shunt)

	return nil
}

// AddBranch inserts a line or transformer edge between two existing buses.
func (n *Network) AddBranch(b Branch) error {
	if b.R < 0 {
		return ErrNegativeImpedance
	}
	if b.R == 0 && b.X == 0 {
		return ErrZeroImpedance
	}
	if b.Tap <= 0 {
		if b.Tap != 0 {
			return ErrInvalidTap
		}
		b.Tap = 1.0
	}
	if b.RatingMVA < 0 {
		return ErrNegativeRating
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.buses[b.From]; !ok {
		return ErrBusNotFound
	}
	if _, ok := n.buses[b.To]; !ok {
		return ErrBusNotFound
	}
	if _, exists := n.branches[b.Name]; exists {
		return ErrDuplicateBus
	}

	branch := b
	n.branches[b.Name] = &branch

	_, err := n.topology.AddEdge(busVertexID(b.From), busVertexID(b.To), 0)
	return err
}

// RemoveBranch takes a branch out of service structurally, removing it
// from the topology graph as well as the branch catalog. Use Status=false
// on the Branch (via a scenario) to keep it present but de-energized;
// RemoveBranch is for permanent topology edits.
func (n *Network) RemoveBranch(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	b, ok := n.branches[name]
	if !ok {
		return ErrBusNotFound
	}
	delete(n.branches, name)

	for _, e := range n.topology.Edges() {
		if e.From == busVertexID(b.From) && e.To == busVertexID(b.To) {
			_ = n.topology.RemoveEdge(e.ID)
			break
		}
	}

	return nil
}

// DesignateSlack marks busID as the network's single reference bus.
// Returns ErrBusNotFound if busID doesn't exist, ErrMultipleSlack if a
// different slack bus is already designated.
func (n *Network) DesignateSlack(busID int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.buses[busID]; !ok {
		return ErrBusNotFound
	}
	if n.slackIsSet && n.slackBusID != busID {
		return ErrMultipleSlack
	}
	n.slackBusID = busID
	n.slackIsSet = true

	return nil
}

// SlackBusID returns the designated slack bus ID and whether one has been
// designated at all.
func (n *Network) SlackBusID() (int, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.slackBusID, n.slackIsSet
}

// BusByID returns the bus with the given ID, or nil if absent.
func (n *Network) BusByID(id int) (*Bus, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	b, ok := n.buses[id]
	return b, ok
}

// BusOrder returns bus IDs in ascending order: the stable row ordering
// every matrix builder (Y-bus, PTDF, ...) indexes against.
func (n *Network) BusOrder() []int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]int, 0, len(n.buses))
	for id := range n.buses {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// Buses returns every bus, ordered by ascending ID.
func (n *Network) Buses() []*Bus {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]*Bus, 0, len(n.buses))
	for _, id := range n.sortedBusIDsLocked() {
		out = append(out, n.buses[id])
	}

	return out
}

func (n *Network) sortedBusIDsLocked() []int {
	ids := make([]int, 0, len(n.buses))
	for id := range n.buses {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// Generators returns every generator, ordered by name for determinism.
func (n *Network) Generators() []*Generator {
	n.mu.RLock()
	defer n.mu.RUnlock()

	names := make([]string, 0, len(n.generators))
	for name := range n.generators {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Generator, 0, len(names))
	for _, name := range names {
		out = append(out, n.generators[name])
	}

	return out
}

// Loads returns every load, ordered by name for determinism.
func (n *Network) Loads() []*Load {
	n.mu.RLock()
	defer n.mu.RUnlock()

	names := make([]string, 0, len(n.loads))
	for name := range n.loads {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Load, 0, len(names))
	for _, name := range names {
		out = append(out, n.loads[name])
	}

	return out
}

// Branches returns every branch, ordered by name for determinism.
func (n *Network) Branches() []*Branch {
	n.mu.RLock()
	defer n.mu.RUnlock()

	names := make([]string, 0, len(n.branches))
	for name := range n.branches {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Branch, 0, len(names))
	for _, name := range names {
		out = append(out, n.branches[name])
	}

	return out
}

// Shunts returns every shunt in insertion order.
func (n *Network) Shunts() []*Shunt {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]*Shunt, len(n.shunts))
	copy(out, n.shunts)

	return out
}

// GeneratorsAtBus returns the in-service generators attached to busID.
func (n *Network) GeneratorsAtBus(busID int) []*Generator {
	var out []*Generator
	for _, g := range n.Generators() {
		if g.BusID == busID && g.Status {
			out = append(out, g)
		}
	}
	return out
}

// BusType classifies busID: Slack if designated, PV if it hosts an
// in-service generator with a voltage setpoint, PQ otherwise. An explicit
// Bus.TypeOverride wins over all of the above.
func (n *Network) BusType(busID int) BusType {
	bus, ok := n.BusByID(busID)
	if ok && bus.TypeOverride != nil {
		return *bus.TypeOverride
	}

	if slackID, set := n.SlackBusID(); set && slackID == busID {
		return Slack
	}
	if len(n.GeneratorsAtBus(busID)) > 0 {
		return PV
	}

	return PQ
}

// Clone returns a deep, independent copy of the Network: every bus,
// generator, load, branch, and shunt is copied by value, and the
// topology graph is rebuilt from the copies. Scenario application always
// operates on a Clone, never the shared original (spec §3's ownership
// rule).
func (n *Network) Clone() *Network {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := New(n.BaseMVA)
	for _, id := range n.sortedBusIDsLocked() {
		b := *n.buses[id]
		_ = out.AddBus(b)
	}
	out.slackBusID = n.slackBusID
	out.slackIsSet = n.slackIsSet

	for _, name := range sortedKeys(n.generators) {
		g := *n.generators[name]
		_ = out.AddGenerator(g)
	}
	for _, name := range sortedKeys(n.loads) {
		l := *n.loads[name]
		_ = out.AddLoad(l)
	}
	for _, name := range sortedKeys(n.branches) {
		br := *n.branches[name]
		_ = out.AddBranch(br)
	}
	for _, s := range n.shunts {
		sh := *s
		_ = out.AddShunt(sh)
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Connected reports whether every bus in the network is reachable from
// the slack bus over in-service branches, used by power-flow solvers to
// detect an island before attempting a linear solve. Out-of-service
// branches (Status == false) are not traversed, even though they remain
// present in the topology graph until RemoveBranch is called.
func (n *Network) Connected() bool {
	slackID, ok := n.SlackBusID()
	if !ok {
		return false
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	// n.topology keeps out-of-service branches around (they're only removed
	// structurally by RemoveBranch), so a scenario-scoped view limited to
	// in-service branches is built here rather than traversing it directly.
	live := core.NewGraph(core.WithMultiEdges(), core.WithLoops())
	for id := range n.buses {
		_ = live.AddVertex(busVertexID(id))
	}
	for _, b := range n.branches {
		if !b.Status {
			continue
		}
		_, _ = live.AddEdge(busVertexID(b.From), busVertexID(b.To), 0)
	}

	start := busVertexID(slackID)
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		neighbors, err := live.NeighborIDs(cur)
		if err != nil {
			continue
		}
		for _, nb := range neighbors {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}

	return len(visited) == len(n.buses)
}

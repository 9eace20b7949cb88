// Package textcache memoizes rendered instruction text using Akita's
// set-associative cache directory.
package textcache

import (
	"sync"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// wordSize is the block size handed to the directory. Each block holds the
// rendering of exactly one instruction word.
const wordSize = 4

// Config holds cache geometry.
type Config struct {
	// NumSets must be a power of two.
	NumSets int
	// NumWays is the associativity.
	NumWays int
}

// DefaultConfig returns a 1024-entry, 4-way cache.
func DefaultConfig() Config {
	return Config{
		NumSets: 256,
		NumWays: 4,
	}
}

// Renderer produces the text for a word on a miss. *disasm.Disassembler
// satisfies it.
type Renderer interface {
	Disassemble(word uint32) string
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads     uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns Hits/Reads, or 0 before the first read.
func (s Statistics) HitRate() float64 {
	if s.Reads == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Reads)
}

// Cache is an LRU cache of rendered lines keyed by instruction word. It is
// safe for concurrent use.
type Cache struct {
	mu sync.Mutex

	config    Config
	directory *akitacache.DirectoryImpl
	renderer  Renderer

	// Rendered text - indexed by (setID * NumWays + wayID)
	lines []string

	stats Statistics
}

// New creates a cache in front of renderer.
func New(config Config, renderer Renderer) *Cache {
	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets,
			config.NumWays,
			wordSize,
			akitacache.NewLRUVictimFinder(),
		),
		renderer: renderer,
		lines:    make([]string, config.NumSets*config.NumWays),
	}
}

// Config returns the cache geometry.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache) Stats() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.NumWays + block.WayID
}

func blockAddr(word uint32) uint64 {
	return uint64(word) * wordSize
}

// Lookup returns the rendering of word, filling the cache on a miss.
func (c *Cache) Lookup(word uint32) string {
	text, _ := c.Access(word)
	return text
}

// Access is Lookup that also reports whether the text came from the cache.
func (c *Cache) Access(word uint32) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Reads++
	addr := blockAddr(word)

	block := c.directory.Lookup(0, addr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.lines[c.blockIndex(block)], true
	}

	c.stats.Misses++
	return c.fill(word, addr), false
}

func (c *Cache) fill(word uint32, addr uint64) string {
	text := c.renderer.Disassemble(word)

	victim := c.directory.FindVictim(addr)
	if victim == nil {
		return text
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	victim.Tag = addr
	victim.IsValid = true
	victim.IsDirty = false
	c.lines[c.blockIndex(victim)] = text
	c.directory.Visit(victim)

	return text
}

// Contains reports whether word is cached without touching LRU state or
// statistics.
func (c *Cache) Contains(word uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	block := c.directory.Lookup(0, blockAddr(word))
	return block != nil && block.IsValid
}

// Invalidate drops the cached rendering of word.
func (c *Cache) Invalidate(word uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	block := c.directory.Lookup(0, blockAddr(word))
	if block != nil && block.IsValid {
		block.IsValid = false
		c.lines[c.blockIndex(block)] = ""
	}
}

// Reset invalidates every entry and clears the statistics.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.directory.Reset()
	clear(c.lines)
	c.stats = Statistics{}
}

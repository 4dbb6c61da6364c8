package domain

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// Queue holds the ordered track list of one player using an index-based
// model. Tracks are not removed when they finish; a current index advances
// through the list according to the loop mode, which is what makes looping
// and going back possible.
//
// All methods are safe for concurrent use. Invariants: the index stays in
// [0, max(len, 1)); the list never exceeds maxSize; an empty queue has
// index 0.
type Queue struct {
	mu      sync.RWMutex
	tracks  []Track
	index   int
	maxSize int
	mode    LoopMode
}

// AddResult describes the outcome of appending tracks to a queue.
type AddResult struct {
	Offset    int     // position of the first appended track
	Added     []Track // tracks actually appended, in order
	Truncated bool    // true when the size limit cut the batch short
}

// NewQueue creates an empty queue bounded to maxSize tracks.
func NewQueue(maxSize int) *Queue {
	return &Queue{maxSize: maxSize}
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.tracks)
}

// MaxSize returns the queue's capacity.
func (q *Queue) MaxSize() int {
	return q.maxSize
}

// Index returns the current track index.
func (q *Queue) Index() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.index
}

// Mode returns the active loop mode.
func (q *Queue) Mode() LoopMode {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.mode
}

// SetMode changes the loop mode. It never touches the track list or index.
func (q *Queue) SetMode(mode LoopMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.mode = mode
}

// Current returns the track at the current index. The second return is false
// when the queue is empty.
func (q *Queue) Current() (Track, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	return q.tracks[q.index], true
}

// Add appends tracks to the end of the queue, up to the size limit. A full
// queue appends nothing and reports Truncated; a batch that does not fit is
// cut to the remaining capacity.
func (q *Queue) Add(tracks ...Track) AddResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	free := q.maxSize - len(q.tracks)
	if free <= 0 {
		return AddResult{Truncated: true}
	}

	truncated := false
	if len(tracks) > free {
		tracks = tracks[:free]
		truncated = true
	}

	offset := len(q.tracks)
	q.tracks = append(q.tracks, tracks...)
	return AddResult{Offset: offset, Added: slices.Clone(tracks), Truncated: truncated}
}

// SetIndex moves the current index to i and returns the track there. An out
// of bounds index returns false and leaves the queue untouched.
func (q *Queue) SetIndex(i int) (Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.tracks) {
		return Track{}, false
	}
	q.index = i
	return q.tracks[i], true
}

// Advance moves to the next track according to the loop mode and returns the
// track that should play now. The second return is false when nothing should
// autoplay: the queue is empty, the mode is LoopModeNoAutostart, or a linear
// queue ran past its last track (the index clamps there).
func (q *Queue) Advance() (Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return Track{}, false
	}

	switch q.mode {
	case LoopModeMusic:
		// Replay the current track.

	case LoopModeNoAutostart:
		if q.index < len(q.tracks)-1 {
			q.index++
		}
		return Track{}, false

	case LoopModeQueue:
		q.index++
		if q.index >= len(q.tracks) {
			q.index = 0
		}

	case LoopModeRandom:
		q.index = rand.IntN(len(q.tracks))

	default: // LoopModeNone
		if q.index >= len(q.tracks)-1 {
			return Track{}, false
		}
		q.index++
	}

	return q.tracks[q.index], true
}

// Skip moves one position forward with wrap-around, ignoring the loop mode,
// and returns the new current track.
func (q *Queue) Skip() (Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	q.index = (q.index + 1) % len(q.tracks)
	return q.tracks[q.index], true
}

// Previous moves one position back with wrap-around, ignoring the loop mode,
// and returns the new current track.
func (q *Queue) Previous() (Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	q.index = (q.index - 1 + len(q.tracks)) % len(q.tracks)
	return q.tracks[q.index], true
}

// Shuffle rebuilds the queue in uniform-random order, keeping the current
// track as the current one by relocating the index to its new position.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) < 2 {
		return
	}

	current := q.tracks[q.index]
	rand.Shuffle(len(q.tracks), func(i, j int) {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	})

	q.index = 0
	for i, t := range q.tracks {
		if t.Equal(current) {
			q.index = i
			break
		}
	}
}

// Slice returns a copy of up to size tracks starting at offset. Out of range
// requests return nil.
func (q *Queue) Slice(offset, size int) []Track {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if offset < 0 || offset >= len(q.tracks) || size <= 0 {
		return nil
	}
	end := min(offset+size, len(q.tracks))
	return slices.Clone(q.tracks[offset:end])
}

// Clear removes every track and resets the index. The loop mode is kept.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = nil
	q.index = 0
}

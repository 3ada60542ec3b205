package dispatcher

// pendingHeap orders events by timestamp, breaking ties by event id
// (both monotonic), implementing container/heap.Interface.
type pendingHeap []*Event

func (h pendingHeap) Len() int { return len(h) }

func (h pendingHeap) Less(i, j int) bool {
	if h[i].Timestamp == h[j].Timestamp {
		return h[i].Id < h[j].Id
	}
	// IMMEDIATE_PROCESS (-1) sorts before any real timestamp.
	return h[i].Timestamp < h[j].Timestamp
}

func (h pendingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pendingHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

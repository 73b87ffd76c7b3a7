package events

// DefaultPartitionSize bounds the number of events in one downstream publish
// call.
const DefaultPartitionSize = 100

// Partition chunks events into batches of at most size, preserving order:
// the concatenation of the returned batches equals the input. For N events
// it returns ceil(N/size) batches. A non-positive size falls back to
// DefaultPartitionSize. Partitioning is purely a chunking concern; it never
// reorders events within a batch.
func Partition(events []LinksChangeEvent, size int) [][]LinksChangeEvent {
	if size <= 0 {
		size = DefaultPartitionSize
	}
	if len(events) == 0 {
		return nil
	}

	batches := make([][]LinksChangeEvent, 0, (len(events)+size-1)/size)
	for start := 0; start < len(events); start += size {
		end := start + size
		if end > len(events) {
			end = len(events)
		}
		batches = append(batches, events[start:end:end])
	}
	return batches
}

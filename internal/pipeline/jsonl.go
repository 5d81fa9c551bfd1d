// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// WriteJSONL writes one JSON record per line in the given order.
func WriteJSONL(w io.Writer, segs []types.CanonicalSegment) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i := range segs {
		if err := enc.Encode(&segs[i]); err != nil {
			return fmt.Errorf("encoding %s: %w", segs[i].SegmentID, err)
		}
	}
	return bw.Flush()
}

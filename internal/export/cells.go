// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/cultivar/internal/models"
)

// FormatCell renders a table cell as text. Floats use the shortest
// representation that round-trips, so equal inputs give byte-identical files.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return models.FormatTime(x)
	default:
		return fmt.Sprint(x)
	}
}

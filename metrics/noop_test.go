// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	noop := defaultNoopMetrics()

	noop.GetOrCreateCountMeter("count").Add(1)
	noop.GetOrCreateCountVecMeter("countVec", []string{"source"}).AddWithLabel(1, map[string]string{"nonsense": "ok"})
	noop.GetOrCreateHistogramMeter("hist", nil).Observe(1)
	noop.GetOrCreateHistogramVecMeter("histVec", nil, nil).ObserveWithLabels(1, nil)
	noop.GetOrCreateGaugeVecMeter("gaugeVec", nil).SetWithLabel(1, nil)

	server := httptest.NewServer(noop.GetOrCreateHandler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if assert.NoError(t, err) {
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

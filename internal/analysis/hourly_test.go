package analysis

import (
	"testing"

	"github.com/lox/bikeshare/internal/models"
)

func TestAggregateHourly(t *testing.T) {
	records := []models.HourlyRecord{
		{Hour: 17, Count: 12000},
		{Hour: 17, Count: 13000},
		{Hour: 3, Count: 200},
		{Hour: 3, Count: 300},
		{Hour: 0, Count: 16},
	}

	agg := AggregateHourly(records)
	if len(agg) != HoursPerDay {
		t.Fatalf("len(agg) = %d, want %d", len(agg), HoursPerDay)
	}
	for h, a := range agg {
		if a.Hour != h {
			t.Errorf("agg[%d].Hour = %d", h, a.Hour)
		}
	}
	if agg[17].Count != 25000 {
		t.Errorf("hour 17 = %v, want 25000", agg[17].Count)
	}
	if agg[3].Count != 500 {
		t.Errorf("hour 3 = %v, want 500", agg[3].Count)
	}
	if agg[12].Count != 0 {
		t.Errorf("hour 12 = %v, want 0", agg[12].Count)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		count float64
		want  models.Cluster
	}{
		{25000, models.ClusterBusy},
		{500, models.ClusterQuiet},
		{20000, models.ClusterQuiet},
		{20000.5, models.ClusterBusy},
		{0, models.ClusterQuiet},
	}
	for _, tt := range tests {
		if got := Classify(tt.count, DefaultBusyThreshold); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func TestAssignClusters(t *testing.T) {
	records := []models.HourlyRecord{
		{Date: "2011-01-01", Hour: 17, Count: 12000},
		{Date: "2011-01-01", Hour: 3, Count: 200},
		{Date: "2011-01-02", Hour: 17, Count: 13000},
		{Date: "2011-01-02", Hour: 3, Count: 300},
	}
	agg := ClassifyHours(AggregateHourly(records), DefaultBusyThreshold)

	out, err := AssignClusters(records, agg)
	if err != nil {
		t.Fatalf("AssignClusters: %v", err)
	}
	if len(out) != len(records) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(records))
	}
	for i, r := range out {
		if r.Cluster != agg[r.Hour].Cluster {
			t.Errorf("record %d hour %d = %q, want %q", i, r.Hour, r.Cluster, agg[r.Hour].Cluster)
		}
	}
	if out[0].Cluster != models.ClusterBusy || out[1].Cluster != models.ClusterQuiet {
		t.Errorf("clusters = %q, %q; want busy, quiet", out[0].Cluster, out[1].Cluster)
	}

	got := BusyHours(agg)
	if len(got) != 1 || got[0] != 17 {
		t.Errorf("BusyHours = %v, want [17]", got)
	}
}

func TestAssignClusters_Unclassified(t *testing.T) {
	records := []models.HourlyRecord{{Hour: 5, Count: 1}}
	if _, err := AssignClusters(records, AggregateHourly(records)); err == nil {
		t.Error("expected error when hours have no label")
	}
}

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/infrastructure/config"
)

const sampleRoster = "Building,Flat No.,First Name,Middle Name,Last Name\r\n" +
	"Tower 1,101,Anil,K,Sharma\r\n" +
	"\r\n" +
	"   \n" +
	"Tower 2,202,Smt Devi,,Rao\n" +
	",303,Nobody,,Here\n" +
	"Tower 3,,Missing,,Flat\n" +
	"Tower 4,404,Short\n"

func TestParseRosterCSV(t *testing.T) {
	records, err := ParseRosterCSV(sampleRoster)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, models.ResidentRecord{
		Building: "Tower 1", FlatNo: "101", FirstName: "Anil", MiddleName: "K", LastName: "Sharma",
	}, records[0])
	assert.Equal(t, "Smt Devi", records[1].FirstName)
	assert.Equal(t, "", records[1].MiddleName)
	assert.Equal(t, models.ResidentRecord{Building: "Tower 4", FlatNo: "404", FirstName: "Short"}, records[2])
}

func TestParseRosterCSV_HeaderLookupByName(t *testing.T) {
	text := " last name , first name,FLAT NO., building \nSharma,Anil,101,Tower 1\n"
	records, err := ParseRosterCSV(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Tower 1", records[0].Building)
	assert.Equal(t, "Sharma", records[0].LastName)
	assert.Equal(t, "", records[0].MiddleName)
}

func TestParseRosterCSV_MissingRequiredColumn(t *testing.T) {
	_, err := ParseRosterCSV("Building,Flat,First Name\nTower 1,101,Anil\n")
	assert.True(t, errors.Is(err, ErrRosterHeader))
}

func TestParseRosterCSV_Empty(t *testing.T) {
	records, err := ParseRosterCSV("\n\n")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseRosterCSV_QuotedFieldsAreSplitLiterally(t *testing.T) {
	records, err := ParseRosterCSV("Building,Flat No.,First Name,Last Name\nTower 1,101,\"Sharma, Anil\",X\n")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "\"Sharma", records[0].FirstName)
	assert.Equal(t, "Anil\"", records[0].LastName)
}

func newRosterServer(t *testing.T, status *int32, body *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(atomic.LoadInt32(status)))
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRosterService_LoadAndMatch(t *testing.T) {
	status := int32(http.StatusOK)
	var body atomic.Value
	body.Store(sampleRoster)
	srv := newRosterServer(t, &status, &body)

	svc := NewRosterService(&config.Config{RosterCSVURL: srv.URL, HTTPTimeout: 5 * time.Second})
	records := svc.Load(context.Background())
	require.Len(t, records, 3)

	got, ok := svc.Match("tower 2", " 202")
	require.True(t, ok)
	assert.Equal(t, "Rao", got.LastName)

	_, ok = svc.Match("Tower 2", "2020")
	assert.False(t, ok)

	stats := svc.Stats()
	assert.Equal(t, 3, stats.Records)
	assert.NotNil(t, stats.LoadedAt)
	assert.Empty(t, stats.LastError)
}

func TestRosterService_FailedFetchKeepsPreviousRoster(t *testing.T) {
	status := int32(http.StatusOK)
	var body atomic.Value
	body.Store(sampleRoster)
	srv := newRosterServer(t, &status, &body)

	svc := NewRosterService(&config.Config{RosterCSVURL: srv.URL})
	require.Len(t, svc.Load(context.Background()), 3)

	atomic.StoreInt32(&status, http.StatusInternalServerError)
	assert.Empty(t, svc.Load(context.Background()))
	assert.Len(t, svc.Records(), 3)
	assert.NotEmpty(t, svc.Stats().LastError)

	_, err := svc.Reload(context.Background())
	assert.True(t, errors.Is(err, ErrRosterUnavailable))
}

func TestRosterService_SuccessfulEmptyFetchReplacesRoster(t *testing.T) {
	status := int32(http.StatusOK)
	var body atomic.Value
	body.Store(sampleRoster)
	srv := newRosterServer(t, &status, &body)

	svc := NewRosterService(&config.Config{RosterCSVURL: srv.URL})
	require.Len(t, svc.Load(context.Background()), 3)

	body.Store("Building,Flat No.,First Name\n")
	stats, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Records)
}

func TestRosterService_UnreachableRosterIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := NewRosterService(&config.Config{RosterCSVURL: url, HTTPTimeout: time.Second})
	assert.Empty(t, svc.Load(context.Background()))
	_, ok := svc.Match("Tower 1", "101")
	assert.False(t, ok)
}

func TestRosterService_FindByName(t *testing.T) {
	svc := NewRosterServiceWithRecords([]models.ResidentRecord{
		{Building: "Tower 2", FlatNo: "202", FirstName: "Smt Devi", LastName: "Rao"},
	})
	found := svc.FindByName("DEVI")
	require.Len(t, found, 1)
	assert.Equal(t, "202", found[0].FlatNo)
}

func TestRosterService_StartAutoRefresh(t *testing.T) {
	svc := NewRosterServiceWithRecords(nil)

	stop, err := svc.StartAutoRefresh("")
	require.NoError(t, err)
	stop()

	_, err = svc.StartAutoRefresh("not a schedule")
	assert.Error(t, err)

	stop, err = svc.StartAutoRefresh("@every 1h")
	require.NoError(t, err)
	stop()
}

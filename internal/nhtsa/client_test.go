package nhtsa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoval/defectwatch/internal/cache"
	"github.com/mkoval/defectwatch/internal/types"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &Config{BaseURL: srv.URL, VINBaseURL: srv.URL}
	return NewClient(cache.New(t.TempDir()), cfg, nil), srv
}

func testVehicle() types.Vehicle {
	return types.Vehicle{Make: "HONDA", Model: "CIVIC", Year: 2016}
}

func TestGetJSON_CacheFirst(t *testing.T) {
	var hits atomic.Int64
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"value":42}`))
	}))

	url := srv.URL + "/anything?x=1"
	got, source, err := client.GetJSON(context.Background(), url, TTLVehicleData)
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, source)
	assert.JSONEq(t, `{"value":42}`, string(got))

	got, source, err = client.GetJSON(context.Background(), url, TTLVehicleData)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, source)
	assert.JSONEq(t, `{"value":42}`, string(got))
	assert.Equal(t, int64(1), hits.Load(), "cache hit must not touch the network")
}

func TestGetJSON_SkipCacheForcesFetch(t *testing.T) {
	var hits atomic.Int64
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	client.cfg.SkipCache = true

	url := srv.URL + "/anything"
	for i := 0; i < 2; i++ {
		_, source, err := client.GetJSON(context.Background(), url, TTLVehicleData)
		require.NoError(t, err)
		assert.Equal(t, SourceNetwork, source)
	}
	assert.Equal(t, int64(2), hits.Load())
}

func TestGetJSON_NotFoundIsEmptyResults(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	got, _, err := client.GetJSON(context.Background(), srv.URL+"/missing", 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(got))
}

func TestGetJSON_ServerErrorIsFetchError(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, source, err := client.GetJSON(context.Background(), srv.URL+"/boom", 0)
	assert.Equal(t, SourceNetwork, source)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
}

func TestGetJSON_InvalidJSONIsFetchError(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))

	_, _, err := client.GetJSON(context.Background(), srv.URL+"/html", 0)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
}

func TestRecallsByVehicle_DecodesResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recalls/recallsByVehicle", r.URL.Path)
		assert.Equal(t, "HONDA", r.URL.Query().Get("make"))
		assert.Equal(t, "CIVIC", r.URL.Query().Get("model"))
		assert.Equal(t, "2016", r.URL.Query().Get("modelYear"))
		_, _ = w.Write([]byte(`{
			"count": 1,
			"results": [{
				"NHTSACampaignNumber": "16V123000",
				"Manufacturer": "Honda",
				"Component": "AIR BAGS",
				"Summary": "Inflator may rupture.",
				"Remedy": "Replace inflator."
			}]
		}`))
	}))

	recalls, source, err := client.RecallsByVehicle(context.Background(), testVehicle())
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, source)
	require.Len(t, recalls, 1)
	assert.Equal(t, "16V123000", recalls[0].CampaignNumber)
	assert.Equal(t, "AIR BAGS", recalls[0].Component)
}

func TestRecallsByVehicle_UppercaseResultsCasing(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Count": 1, "Results": [{"NHTSACampaignNumber": "20V001000"}]}`))
	}))

	recalls, _, err := client.RecallsByVehicle(context.Background(), testVehicle())
	require.NoError(t, err)
	require.Len(t, recalls, 1)
	assert.Equal(t, "20V001000", recalls[0].CampaignNumber)
}

func TestRecallsByVehicle_RejectsInvalidVehicle(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid vehicle")
	}))

	_, _, err := client.RecallsByVehicle(context.Background(), types.Vehicle{Make: "HONDA"})
	assert.Error(t, err)
}

func TestRecallsByCampaign_EmptyCampaignNumber(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty campaign number")
	}))

	recalls, _, err := client.RecallsByCampaign(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, recalls)
}

func TestComplaintsByVehicle_LiftsVehicleProduct(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/complaints/complaintsByVehicle", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"count": 1,
			"results": [{
				"odiNumber": 11512345,
				"crash": true,
				"numberOfInjuries": 1,
				"dateComplaintFiled": "03/15/2023",
				"components": "SERVICE BRAKES",
				"summary": "Brakes failed at speed.",
				"products": [
					{"type": "Tire", "productMake": "ACME"},
					{"type": "Vehicle", "productYear": "2016", "productMake": "HONDA", "productModel": "CIVIC", "manufacturer": "Honda Motor Co."}
				]
			}]
		}`))
	}))

	records, _, err := client.ComplaintsByVehicle(context.Background(), testVehicle())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, int64(11512345), rec.ODINumber)
	assert.True(t, rec.Crash)
	assert.Equal(t, "HONDA", rec.ProductMake)
	assert.Equal(t, "CIVIC", rec.ProductModel)
	assert.Equal(t, "2016", rec.ProductYear)
	assert.Equal(t, "Honda Motor Co.", rec.Manufacturer)
	assert.Nil(t, rec.Enrichment)
}

func TestComplaintsByVehicle_EmptyDataset(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	records, _, err := client.ComplaintsByVehicle(context.Background(), testVehicle())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestComplaintDetail_FlattensNestedPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/safetyIssues/byNhtsaId", r.URL.Path)
		assert.Equal(t, "11512345", r.URL.Query().Get("nhtsaId"))
		assert.Equal(t, "complaints", r.URL.Query().Get("filterValue"))
		_, _ = w.Write([]byte(`{
			"results": [{
				"complaints": [{
					"nhtsaIdNumber": 11512345,
					"description": "THE BRAKE PEDAL WENT TO THE FLOOR.",
					"consumerLocation": "LAS VEGAS, NV",
					"dateOfIncident": "2023-03-10",
					"dateFiled": "2023-03-15",
					"components": [{"name": "service brakes"}, {"name": " "}]
				}]
			}]
		}`))
	}))

	enr, err := client.ComplaintDetail(context.Background(), 11512345)
	require.NoError(t, err)
	require.NotNil(t, enr)
	assert.Equal(t, "THE BRAKE PEDAL WENT TO THE FLOOR.", enr.Description)
	assert.Equal(t, "NV", enr.StateAbbreviation)
	assert.Equal(t, []string{"SERVICE BRAKES"}, enr.ComponentNames)
	assert.Equal(t, "2023-03-15", enr.DateFiledISO)
}

func TestComplaintDetail_NoDetailAvailable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))

	enr, err := client.ComplaintDetail(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, enr)
}

func TestSafetyIssueByID_Validation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for invalid input")
	}))

	_, _, err := client.SafetyIssueByID(context.Background(), "", IssueComplaints)
	assert.Error(t, err)

	_, _, err = client.SafetyIssueByID(context.Background(), "123", IssueType("bogus"))
	assert.Error(t, err)
}

func TestDecodeVIN_LiftsCommonAttributes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vehicles/decodevinvalues/1HGCM82633A004352", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{
			"Count": 1,
			"Message": "Results returned successfully",
			"Results": [{
				"Make": "HONDA",
				"Model": "Accord",
				"ModelYear": "2003",
				"ErrorCode": "0",
				"BodyClass": "Sedan"
			}]
		}`))
	}))

	res, _, err := client.DecodeVIN(context.Background(), " 1hgcm82633a004352 ")
	require.NoError(t, err)
	assert.Equal(t, "1HGCM82633A004352", res.VIN)
	assert.Equal(t, "HONDA", res.Make)
	assert.Equal(t, "Accord", res.Model)
	assert.Equal(t, "2003", res.ModelYear)
	assert.Equal(t, "Sedan", res.Attributes["BodyClass"])
	assert.Empty(t, res.DecodeWarning)
}

func TestDecodeVIN_SurfacesDecodeWarning(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"Results": [{
				"Make": "HONDA",
				"ErrorCode": "6",
				"ErrorText": "Incomplete VIN"
			}]
		}`))
	}))

	res, _, err := client.DecodeVIN(context.Background(), "1HGCM82633A004352")
	require.NoError(t, err)
	assert.Equal(t, "6: Incomplete VIN", res.DecodeWarning)
}

func TestDecodeVIN_RejectsBadVIN(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid VIN")
	}))

	_, _, err := client.DecodeVIN(context.Background(), "SHORT")
	assert.Error(t, err)
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &FetchError{URL: "https://example.com", Message: "HTTP request failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "https://example.com")
}

package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pythonegrove/codesamples/internal/db"
	"github.com/pythonegrove/codesamples/internal/models"
	"github.com/pythonegrove/codesamples/internal/services"
)

const (
	testAppBinary          = "./rentals_test_app"
	testSitePort           = "8089"
	testServiceApiPortWeb  = "8091"
	testServiceApiPortBg   = "8092"
	testSiteURL            = "http://localhost:" + testSitePort
	testServiceApiURL      = "http://localhost:" + testServiceApiPortWeb
	startupTimeout         = 15 * time.Second
	pingEndpoint           = testSiteURL + "/ping"
	testBaseSlug           = "itest"
	testListingID          = "ITEST-1001"
	testOtherMarketListing = "ITEST-2001"
	testOwnerEmail         = "owner@itest.example.com"
)

// TestMain builds the binary, seeds a base, and runs a site and a worker process against it.
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	if os.Getenv("MONGO_URI") == "" {
		log.Println("MONGO_URI not set, skipping integration tests")
		return
	}

	defer func() {
		log.Println("Integration Test Teardown: Cleaning up test binary...")
		_ = os.Remove(testAppBinary)
	}()

	log.Println("Integration Test Setup: Building application...")
	buildCmd := exec.Command("go", "build", "-o", testAppBinary, ".")
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		log.Printf("Failed to build application: %v\nOutput:\n%s", err, string(buildOutput))
		os.Exit(1)
	}

	if err := seedTestData(); err != nil {
		log.Printf("Failed to seed test data: %v", err)
		os.Exit(1)
	}
	defer cleanupTestData()

	commonEnv := append(os.Environ(),
		"JWT_SECRET=integration-test-secret",
		"GIN_MODE=release",
		"MOCK_SERVICES=true",
		"CLOUDFLARE_TURNSTILE_SECRET_KEY=",
		"SMTP_FROM_ADDRESS=test@example.com",
	)

	webCmd := exec.Command(testAppBinary, "-m", "web")
	webCmd.Env = append(commonEnv,
		"SITE_PORT="+testSitePort,
		"SERVICE_API_PORT="+testServiceApiPortWeb,
		"RATE_LIMIT_BUCKET_SIZE=20",
		"RATE_LIMIT_REFILL_RATE=20",
		"GALLERY_PAGE_SIZE=1",
	)
	webCmd.Stderr = os.Stderr
	webCmd.Stdout = os.Stdout
	if err := webCmd.Start(); err != nil {
		log.Printf("Failed to start site process: %v", err)
		os.Exit(1)
	}

	bgCmd := exec.Command(testAppBinary, "-m", "bg")
	bgCmd.Env = append(commonEnv, "SERVICE_API_PORT="+testServiceApiPortBg)
	bgCmd.Stderr = os.Stderr
	bgCmd.Stdout = os.Stdout
	if err := bgCmd.Start(); err != nil {
		_ = webCmd.Process.Kill()
		log.Printf("Failed to start background worker process: %v", err)
		os.Exit(1)
	}

	defer func() {
		log.Println("Integration Test Teardown: Shutting down application processes...")
		for _, cmd := range []*exec.Cmd{bgCmd, webCmd} {
			if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
				_ = cmd.Process.Kill()
				continue
			}
			_, _ = cmd.Process.Wait()
		}
	}()

	log.Printf("Integration Test Setup: Waiting for site at %s...", pingEndpoint)
	startTime := time.Now()
	ready := false
	for time.Since(startTime) < startupTimeout {
		resp, err := http.Get(pingEndpoint)
		if err == nil {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK && string(body) == "pong" {
				ready = true
				break
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	if !ready {
		log.Printf("Application failed to start within %v", startupTimeout)
		return
	}

	// The worker has no health check.
	time.Sleep(2 * time.Second)

	exitCode := m.Run()
	log.Printf("Integration Test Teardown: Tests finished with exit code %d.", exitCode)
}

func connectSeedDB(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	dbName := os.Getenv("MONGO_DB_NAME")
	if dbName == "" {
		dbName = "easyapp"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(os.Getenv("MONGO_URI")))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return client, client.Database(dbName), nil
}

func seedTestData() error {
	log.Println("Seeding test data...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, database, err := connectSeedDB(ctx)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	cleanup(ctx, database)

	base := models.Base{
		Slug:         testBaseSlug,
		Name:         "Integration Rentals",
		Domains:      []string{"localhost"},
		Markets:      []string{"itest"},
		ContactEmail: testOwnerEmail,
	}
	if _, err := database.Collection(db.BasesCollection).InsertOne(ctx, base); err != nil {
		return fmt.Errorf("failed to seed base: %w", err)
	}

	now := time.Now().UTC()
	listings := []interface{}{
		models.PropertyListing{
			ListingID: testListingID, ListingType: models.ListingTypeRental, Market: "itest", Featured: true,
			Title: "Sunny Loft", Address1: "12 Congress Ave", City: "Austin", State: "TX", Zip: "78701",
			Price: 2150, Bedrooms: 2, Bathrooms: 1, UpdatedAt: now,
		},
		models.PropertyListing{
			ListingID: "ITEST-1002", ListingType: models.ListingTypeRental, Market: "itest",
			Title: "Garden Flat", Address1: "4 Elm St", City: "Round Rock", State: "TX", Zip: "78664",
			Price: 1400, Bedrooms: 1, Bathrooms: 1, UpdatedAt: now,
		},
		models.PropertyListing{
			ListingID: testOtherMarketListing, ListingType: models.ListingTypeRental, Market: "elsewhere",
			Title: "Far Away House", City: "Denver", UpdatedAt: now,
		},
	}
	if _, err := database.Collection(db.ListingsCollection).InsertMany(ctx, listings); err != nil {
		return fmt.Errorf("failed to seed listings: %w", err)
	}

	catID := primitive.NewObjectID()
	category := models.MenuCategory{ID: catID, Base: testBaseSlug, CategoryName: "Rentals", Order: 1}
	if _, err := database.Collection(db.MenuCategoriesCollection).InsertOne(ctx, category); err != nil {
		return fmt.Errorf("failed to seed menu category: %w", err)
	}
	items := []interface{}{
		models.MenuItem{Base: testBaseSlug, CategoryID: catID, ItemName: "Gallery", URL: "/rentals/gallery", Order: 2},
		models.MenuItem{Base: testBaseSlug, CategoryID: catID, ItemName: "All rentals", URL: "/rentals", Order: 1},
	}
	if _, err := database.Collection(db.MenuItemsCollection).InsertMany(ctx, items); err != nil {
		return fmt.Errorf("failed to seed menu items: %w", err)
	}
	return nil
}

func cleanup(ctx context.Context, database *mongo.Database) {
	deletes := map[string]bson.M{
		db.BasesCollection:               {"slug": testBaseSlug},
		db.ListingsCollection:            {"listing_id": bson.M{"$regex": "^ITEST-"}},
		db.MenuCategoriesCollection:      {"base": testBaseSlug},
		db.MenuItemsCollection:           {"base": testBaseSlug},
		db.InformationRequestsCollection: {"base": testBaseSlug},
	}
	for collection, filter := range deletes {
		if _, err := database.Collection(collection).DeleteMany(ctx, filter); err != nil {
			log.Printf("Failed to clean %s: %v", collection, err)
		}
	}
}

func cleanupTestData() {
	log.Println("Cleaning up seeded test data...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, database, err := connectSeedDB(ctx)
	if err != nil {
		log.Printf("Failed to connect to MongoDB for cleanup: %v", err)
		return
	}
	defer client.Disconnect(ctx)
	cleanup(ctx, database)
}

func getPage(t *testing.T, method, path string, form url.Values) (int, string) {
	t.Helper()
	var resp *http.Response
	var err error
	if method == http.MethodPost {
		resp, err = http.PostForm(testSiteURL+path, form)
	} else {
		resp, err = http.Get(testSiteURL + path)
	}
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestIntegration_Ping(t *testing.T) {
	status, body := getPage(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", body)
}

func TestIntegration_SiteScript(t *testing.T) {
	status, body := getPage(t, http.MethodGet, "/static/site.js", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "/menu/top")
}

func TestIntegration_RentalList_ScopedToBaseMarkets(t *testing.T) {
	status, body := getPage(t, http.MethodGet, "/rentals", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Sunny Loft")
	assert.Contains(t, body, "Garden Flat")
	assert.NotContains(t, body, "Far Away House")
}

func TestIntegration_RentalList_LocationSearch(t *testing.T) {
	status, body := getPage(t, http.MethodPost, "/rentals", url.Values{"location": {"round rock"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Garden Flat")
	assert.NotContains(t, body, "Sunny Loft")
}

func TestIntegration_RentalGallery_Pages(t *testing.T) {
	_, first := getPage(t, http.MethodGet, "/rentals/gallery", nil)
	_, second := getPage(t, http.MethodGet, "/rentals/gallery?page=2", nil)

	// Featured listings sort first.
	assert.Contains(t, first, "Sunny Loft")
	assert.NotContains(t, first, "Garden Flat")
	assert.Contains(t, second, "Garden Flat")
}

func TestIntegration_RentalDetail(t *testing.T) {
	status, body := getPage(t, http.MethodGet, "/rentals/"+testListingID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Sunny Loft")
	assert.Contains(t, body, "12 Congress Ave, Austin, TX 78701")

	status, _ = getPage(t, http.MethodGet, "/rentals/ITEST-MISSING", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIntegration_TopMenu(t *testing.T) {
	status, body := getPage(t, http.MethodGet, "/menu/top", nil)
	require.Equal(t, http.StatusOK, status)

	var menu models.Menu
	require.NoError(t, json.Unmarshal([]byte(body), &menu))
	assert.Equal(t, []string{"Rentals"}, menu.Categories())
	items := menu.Items("Rentals")
	require.Len(t, items, 2)
	assert.Equal(t, "All rentals", items[0].ItemName)
	assert.Equal(t, "/rentals/gallery", items[1].URL)
}

func TestIntegration_RequestInformation_SendsEmail(t *testing.T) {
	form := url.Values{
		"listing_id": {testListingID},
		"name":       {"Jane Renter"},
		"email":      {"jane@example.com"},
		"phone":      {"555-0100"},
		"message":    {"Is it still available?"},
	}
	status, body := getPage(t, http.MethodPost, "/rentals/request-information", form)
	require.Equal(t, http.StatusOK, status)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Equal(t, true, resp["success"], "unexpected response: %s", body)

	emailData := getEmailFromServiceAPI(t, services.RequestInformationTemplate, testOwnerEmail)
	assert.Contains(t, emailData["subject"], testListingID)
	assert.Contains(t, emailData["body"], "Is it still available?")
	assert.Contains(t, emailData["body"], "Jane Renter")
}

func TestIntegration_RequestInformation_InvalidForm(t *testing.T) {
	status, body := getPage(t, http.MethodPost, "/rentals/request-information", url.Values{"listing_id": {testListingID}})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, `"success":false`), body)
}

// callServiceAPI makes a request to the Service API.
func callServiceAPI(t *testing.T, method string, args []interface{}) (map[string]interface{}, *http.Response, error) {
	t.Helper()
	payload := map[string]interface{}{
		"method":    method,
		"arguments": args,
	}
	bodyBytes, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, testServiceApiURL+"/api", bytes.NewReader(bodyBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, resp, err
	}
	respBodyBytes, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var respBody map[string]interface{}
	if err := json.Unmarshal(respBodyBytes, &respBody); err != nil {
		respBody = map[string]interface{}{"raw_body": string(respBodyBytes)}
	}
	return respBody, resp, nil
}

// getEmailFromServiceAPI polls the service API until the worker has stored the mock email.
func getEmailFromServiceAPI(t *testing.T, templateID, emailAddr string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		respBody, resp, err := callServiceAPI(t, "getTestEmail", []interface{}{templateID, emailAddr})
		if err == nil && resp.StatusCode == http.StatusOK {
			data, ok := respBody["data"].(map[string]interface{})
			require.True(t, ok, "service API response missing data: %v", respBody)
			return data
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mock email %s for %s not found", templateID, emailAddr)
	return nil
}

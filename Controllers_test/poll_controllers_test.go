package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/controllers"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/store"
	"github.com/yeremiapane/canteen-app/utils"
)

// fakeAuth injects an authenticated identity the way AuthMiddleware would.
func fakeAuth(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func setupPollRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(fakeAuth(1, "admin"))

	resolver := services.NewPollResolver(store.NewGormStore(db))
	pollCtrl := controllers.NewPollController(resolver)
	router.GET("/polls", pollCtrl.GetPollsForDate)
	router.POST("/admin/polls/ensure", pollCtrl.EnsurePoll)

	return router
}

func TestEnsurePollAndFetch(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	router := setupPollRouter(db)

	payload := map[string]string{"date": "2024-01-01", "meal_slot": "lunch"}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/admin/polls/ensure", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var ensureResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &ensureResp))
	data := ensureResp["data"].(map[string]interface{})
	poll := data["poll"].(map[string]interface{})
	assert.Equal(t, "Lunch Attendance - 2024-01-01", poll["title"])
	assert.NotNil(t, poll["id"])
	assert.Equal(t, false, poll["is_legacy"])
	assert.Equal(t, "poll_date", data["column_used"])
	firstID := poll["id"]

	// idempotent: same poll id on a second ensure
	req, _ = http.NewRequest("POST", "/admin/polls/ensure", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &ensureResp))
	data = ensureResp["data"].(map[string]interface{})
	assert.Equal(t, firstID, data["poll"].(map[string]interface{})["id"])

	// fetch lists it
	req, _ = http.NewRequest("GET", "/polls?date=2024-01-01", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var fetchResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetchResp))
	data = fetchResp["data"].(map[string]interface{})
	polls := data["polls"].([]interface{})
	assert.Len(t, polls, 1)
}

func TestEnsurePollValidation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	router := setupPollRouter(db)

	payload := map[string]string{"date": "01/01/2024", "meal_slot": "lunch"}
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/admin/polls/ensure", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload = map[string]string{"date": "2024-01-01", "meal_slot": "supper"}
	payloadBytes, _ = json.Marshal(payload)
	req, _ = http.NewRequest("POST", "/admin/polls/ensure", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFetchPollsDegradesWithoutTable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	assert.NoError(t, db.Migrator().DropTable("polls"))
	router := setupPollRouter(db)

	req, _ := http.NewRequest("GET", "/polls?date=2024-01-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "polls-table-missing", data["warning"])

	// ensure degrades to a legacy poll instead of failing
	payload := map[string]string{"date": "2024-01-01", "meal_slot": "lunch"}
	payloadBytes, _ := json.Marshal(payload)
	req, _ = http.NewRequest("POST", "/admin/polls/ensure", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data = resp["data"].(map[string]interface{})
	poll := data["poll"].(map[string]interface{})
	assert.Nil(t, poll["id"])
	assert.Equal(t, true, poll["is_legacy"])
	assert.Equal(t, "Lunch Attendance - 2024-01-01", poll["title"])
}

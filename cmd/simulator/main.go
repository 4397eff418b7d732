package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Product mirrors the API's product payload.
type Product struct {
	ID           string `json:"id,omitempty"`
	SerialNumber string `json:"serial_number"`
	ModelName    string `json:"model_name"`
	ModelType    string `json:"model_type"`
	City         string `json:"city"`
	Location     string `json:"location_detail,omitempty"`
}

// Issue mirrors the API's issue payload.
type Issue struct {
	ID             string `json:"id,omitempty"`
	ProductID      string `json:"product_id"`
	IssueType      string `json:"issue_type"`
	Severity       string `json:"severity,omitempty"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Status         string `json:"status,omitempty"`
	TechnicianName string `json:"technician_name,omitempty"`
}

var cities = []string{"Vilnius", "Kaunas", "Klaipėda", "Šiauliai", "Panevėžys"}

var modelLines = []struct {
	Name string
	Type string
}{
	{"Dimeda Power-X 250", "powered"},
	{"Dimeda Power-X 300", "powered"},
	{"Dimeda Roll-In RS1", "roll_in"},
	{"Dimeda Roll-In RS2", "roll_in"},
}

var issueTemplates = []struct {
	Type  string
	Title string
}{
	{"mechanical", "Side rail latch sticking"},
	{"mechanical", "Wheel lock does not engage"},
	{"electrical", "Lift actuator unresponsive"},
	{"electrical", "Battery drains overnight"},
	{"cosmetic", "Mattress cover torn"},
	{"other", "Hydraulic fluid smell"},
}

var technicians = []string{"Jonas", "Ruta", "Mantas", "Egle"}

var authToken string

func request(method, url string, body interface{}) (map[string]interface{}, int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, 0, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode, nil
}

func login(apiURL, password string) error {
	result, status, err := request(http.MethodPost, apiURL+"/auth/login", map[string]string{"password": password})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login failed with status %d", status)
	}
	token, ok := result["token"].(string)
	if !ok {
		return fmt.Errorf("no token in login response")
	}
	authToken = token
	return nil
}

func createProduct(apiURL string, n int) (string, error) {
	line := modelLines[rand.Intn(len(modelLines))]
	product := Product{
		SerialNumber: fmt.Sprintf("DM-%04d", 1000+n),
		ModelName:    line.Name,
		ModelType:    line.Type,
		City:         cities[rand.Intn(len(cities))],
		Location:     fmt.Sprintf("Ward %d", 1+rand.Intn(8)),
	}

	result, status, err := request(http.MethodPost, apiURL+"/products", product)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("product creation failed with status %d", status)
	}
	id, ok := result["id"].(string)
	if !ok {
		return "", fmt.Errorf("invalid product ID in response")
	}

	log.WithFields(log.Fields{
		"product_id": id,
		"serial":     product.SerialNumber,
		"city":       product.City,
	}).Info("Created product")
	return id, nil
}

func reportIssue(apiURL, productID string) (string, error) {
	tmpl := issueTemplates[rand.Intn(len(issueTemplates))]
	issue := Issue{
		ProductID:   productID,
		IssueType:   tmpl.Type,
		Severity:    []string{"low", "medium", "high", "critical"}[rand.Intn(4)],
		Title:       tmpl.Title,
		Description: tmpl.Title + " reported during rounds",
	}

	result, status, err := request(http.MethodPost, apiURL+"/issues", issue)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("issue creation failed with status %d", status)
	}
	id, _ := result["id"].(string)
	log.WithFields(log.Fields{"issue_id": id, "type": tmpl.Type}).Info("Reported issue")
	return id, nil
}

func updateIssue(apiURL, issueID string, patch map[string]interface{}) error {
	_, status, err := request(http.MethodPut, apiURL+"/issues/"+issueID, patch)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("issue update failed with status %d", status)
	}
	return nil
}

// runLifecycle drives one issue from open to resolved. Warranty issues take
// the in-service repair detour before resolving.
func runLifecycle(apiURL, issueID string, pause time.Duration) {
	technician := technicians[rand.Intn(len(technicians))]
	if err := updateIssue(apiURL, issueID, map[string]interface{}{
		"technician_name": technician,
		"status":          "in_progress",
	}); err != nil {
		log.WithError(err).WithField("issue_id", issueID).Error("Failed to assign technician")
		return
	}
	log.WithFields(log.Fields{"issue_id": issueID, "technician": technician}).Info("Assigned technician")
	time.Sleep(pause)

	warranty := rand.Intn(2) == 0
	if warranty {
		if err := updateIssue(apiURL, issueID, map[string]interface{}{
			"status":                "resolved",
			"warranty_status":       "warranty",
			"warranty_service_type": "warranty",
			"resolution":            "Actuator replacement under warranty",
		}); err != nil {
			log.WithError(err).WithField("issue_id", issueID).Error("Failed to route to warranty")
			return
		}
		log.WithField("issue_id", issueID).Info("Routed to warranty service")
		time.Sleep(pause)

		if err := updateIssue(apiURL, issueID, map[string]interface{}{"start_repair": true}); err != nil {
			log.WithError(err).WithField("issue_id", issueID).Error("Failed to start repair")
			return
		}
		time.Sleep(pause)

		if err := updateIssue(apiURL, issueID, map[string]interface{}{
			"complete_repair": true,
			"repair_notes":    "Replaced actuator, load tested",
		}); err != nil {
			log.WithError(err).WithField("issue_id", issueID).Error("Failed to complete repair")
			return
		}
		log.WithField("issue_id", issueID).Info("Warranty repair completed")
		return
	}

	if err := updateIssue(apiURL, issueID, map[string]interface{}{
		"status":                "resolved",
		"warranty_status":       "non_warranty",
		"warranty_service_type": "non_warranty",
		"resolution":            "Adjusted and lubricated on site",
		"estimated_fix_time":    strconv.Itoa(1 + rand.Intn(4)),
		"estimated_cost":        strconv.Itoa(50 + rand.Intn(200)),
		"create_service_record": true,
	}); err != nil {
		log.WithError(err).WithField("issue_id", issueID).Error("Failed to resolve issue")
		return
	}
	log.WithField("issue_id", issueID).Info("Issue resolved with service record")
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	password := os.Getenv("SIM_ADMIN_PASSWORD")
	if password == "" {
		password = "admin2025"
	}

	fleetSize := 5
	if v := os.Getenv("FLEET_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			fleetSize = n
		}
	}

	pause := 2 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			pause = time.Duration(n) * time.Second
		}
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
	}).Info("Starting service simulation")

	if err := login(apiURL, password); err != nil {
		log.WithError(err).Error("Login failed. Ensure the API is reachable. Exiting.")
		return
	}

	productIDs := make([]string, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		id, err := createProduct(apiURL, i+1)
		if err != nil {
			log.WithError(err).Error("Failed to create product")
			continue
		}
		productIDs = append(productIDs, id)
	}
	if len(productIDs) == 0 {
		log.Error("No products created. Exiting.")
		return
	}

	for {
		productID := productIDs[rand.Intn(len(productIDs))]
		issueID, err := reportIssue(apiURL, productID)
		if err != nil {
			log.WithError(err).Error("Failed to report issue")
			time.Sleep(pause)
			continue
		}
		runLifecycle(apiURL, issueID, pause)
		time.Sleep(pause)
	}
}

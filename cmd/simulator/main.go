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

// Vehicle mirrors the registry payload the API accepts.
type Vehicle struct {
	Plate  string `json:"plate"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Year   int    `json:"year"`
	Status string `json:"status"`
}

// Ticket is the subset of the API's ticket response the simulator reads.
type Ticket struct {
	ID     string `json:"id"`
	Plate  string `json:"plate"`
	Status string `json:"status"`
}

var tractorItems = []string{
	"luces", "frenos", "neumaticos", "nivel_aceite", "nivel_refrigerante",
	"espejos", "parabrisas", "extintor", "botiquin", "conos",
	"cinturones", "documentacion",
}

var cisternItems = []string{
	"valvulas", "mangueras", "tapa_estanque", "sellos",
	"escalera", "barandas", "conexion_tierra", "kit_derrame",
}

var symptomsPool = []string{
	"ruido en frenos",
	"fuga de aceite",
	"vibracion en el volante",
	"luz de motor encendida",
	"neumatico desgastado",
}

var authToken string

func request(method, url string, payload any) (*http.Response, error) {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

// login obtains a token using the demo credentials. The API falls back to its
// local credential table when the user store is down, so this works on a
// fresh deployment with no seeded users.
func login(apiURL, username, password string) (string, error) {
	resp, err := request(http.MethodPost, apiURL+"/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func randomPlate() string {
	letters := "BCDFGHJKLPRSTVWXYZ"
	pick := func() byte { return letters[rand.Intn(len(letters))] }
	return fmt.Sprintf("%c%c%c%c-%02d", pick(), pick(), pick(), pick(), rand.Intn(100))
}

func registerVehicle(apiURL string) (string, error) {
	makes := []string{"Volvo", "Scania", "Mercedes-Benz", "MAN", "Freightliner"}
	models := []string{"FH16", "R450", "Actros", "TGX", "Cascadia"}

	vehicle := Vehicle{
		Plate:  randomPlate(),
		Make:   makes[rand.Intn(len(makes))],
		Model:  models[rand.Intn(len(models))],
		Year:   2018 + rand.Intn(7),
		Status: "active",
	}

	resp, err := request(http.MethodPost, apiURL+"/vehicles", vehicle)
	if err != nil {
		return "", fmt.Errorf("failed to register vehicle: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("vehicle registration failed with status %d", resp.StatusCode)
	}

	log.WithFields(log.Fields{
		"plate": vehicle.Plate,
		"make":  vehicle.Make,
		"model": vehicle.Model,
	}).Info("Registered vehicle")
	return vehicle.Plate, nil
}

func checklist(items []string, failOne bool) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		out[item] = true
	}
	if failOne {
		out[items[rand.Intn(len(items))]] = false
	}
	return out
}

// tripState tracks one vehicle's odometer across trips.
type tripState struct {
	Plate    string
	Odometer int
}

func checkout(apiURL string, s *tripState) (*Ticket, error) {
	payload := map[string]any{
		"plate":              s.Plate,
		"description":        "Salida de ruta programada",
		"kilometraje_salida": s.Odometer,
		"fuel_level":         []int{25, 50, 75, 100}[rand.Intn(4)],
		"photo_url":          "/files/photos/demo-tablero.jpg",
		"checklist_tractor":  checklist(tractorItems, false),
	}
	resp, err := request(http.MethodPost, apiURL+"/checkout", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("checkout failed with status %d", resp.StatusCode)
	}
	var t Ticket
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func checkin(apiURL string, s *tripState, ticketID string, reportIssue bool) (*Ticket, error) {
	s.Odometer += 50 + rand.Intn(400)
	payload := map[string]any{
		"kilometraje_ingreso": s.Odometer,
		"fuel_level":          []int{0, 25, 50, 75}[rand.Intn(4)],
		"photo_url":           "/files/photos/demo-tablero.jpg",
		"checklist_cisterna":  checklist(cisternItems, reportIssue && rand.Intn(2) == 0),
	}
	if reportIssue {
		payload["sintomas"] = []string{symptomsPool[rand.Intn(len(symptomsPool))]}
	}
	resp, err := request(http.MethodPost, apiURL+"/tickets/"+ticketID+"/checkin", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("check-in failed with status %d", resp.StatusCode)
	}
	var t Ticket
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// simulateTrips runs one vehicle's checkout/check-in loop. Roughly one in
// four returns reports an issue so the triage queue gets realistic traffic.
func simulateTrips(apiURL string, s *tripState, interval time.Duration) {
	for {
		t, err := checkout(apiURL, s)
		if err != nil {
			log.WithError(err).WithField("plate", s.Plate).Error("Checkout failed")
			time.Sleep(interval)
			continue
		}
		log.WithFields(log.Fields{"plate": s.Plate, "ticket_id": t.ID}).Info("Vehicle on route")

		time.Sleep(interval)

		reportIssue := rand.Intn(4) == 0
		done, err := checkin(apiURL, s, t.ID, reportIssue)
		if err != nil {
			log.WithError(err).WithField("plate", s.Plate).Error("Check-in failed")
			time.Sleep(interval)
			continue
		}
		log.WithFields(log.Fields{
			"plate":     s.Plate,
			"ticket_id": done.ID,
			"status":    done.Status,
			"odometer":  s.Odometer,
		}).Info("Vehicle returned")

		time.Sleep(interval)
	}
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	fleetSize := 5
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			fleetSize = n
		}
	}

	interval := 5 * time.Second
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			interval = time.Duration(n) * time.Second
		}
	}

	authToken = os.Getenv("SIM_AUTH_TOKEN")
	if authToken == "" {
		token, err := login(apiURL, "admin", "admin1234")
		if err != nil {
			log.WithError(err).Fatal("Login failed, set SIM_AUTH_TOKEN or check the API")
		}
		authToken = token
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting trip simulation")

	states := make([]*tripState, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		plate, err := registerVehicle(apiURL)
		if err != nil {
			log.WithError(err).Error("Failed to register vehicle")
			continue
		}
		states = append(states, &tripState{Plate: plate, Odometer: 10000 + rand.Intn(90000)})
	}

	if len(states) == 0 {
		log.Fatal("No vehicles registered, ensure the API is reachable")
	}

	for _, s := range states {
		go simulateTrips(apiURL, s, interval)
	}

	log.Info("Trip simulation started")
	select {}
}

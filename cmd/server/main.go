package main

import (
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dschrander/uv-energy-saver/internal/config"
	"github.com/dschrander/uv-energy-saver/internal/curing"
	"github.com/dschrander/uv-energy-saver/internal/db"
	"github.com/dschrander/uv-energy-saver/internal/migrations"
	"github.com/dschrander/uv-energy-saver/internal/seed"
	"github.com/dschrander/uv-energy-saver/internal/settings"
)

type server struct {
	auth     *authService
	db       *sql.DB
	curing   *curing.Calculator
	settings *settings.Store
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
}

// calcFormValues carries the raw calculator form fields. Title and Notes are
// only submitted by the save form.
type calcFormValues struct {
	Substraat      string
	Inktsoort      string
	RasterwalsType string
	Volume         string
	Title          string
	Notes          string
}

type resultViewData struct {
	curing.Result
	RecommendedPower float64
	HasRecommended   bool
}

type calculatorViewData struct {
	baseViewData
	Substrates  []curing.Substrate
	InkTypes    []curing.InkType
	RollerTypes []curing.RollerType
	Selection   calcFormValues
	Volumes     []curing.VolumeSpec
	SpecInfo    *curing.VolumeSpec
	BCM         float64
	Help        map[string]string
	Result      *resultViewData
	Saved       []settings.Setting
}

type rollerTableView struct {
	Type  curing.RollerType
	Specs []curing.VolumeSpec
}

type specificationsViewData struct {
	baseViewData
	Tables []rollerTableView
	Help   map[string]string
}

// helpTexts holds the operator help strings shown next to the form fields.
var helpTexts = map[string]string{
	"substrate":  "Het type materiaal waarop gedrukt wordt. Dit beïnvloedt de UV-absorptie.",
	"ink_type":   "Het type inkt dat gebruikt wordt. UV-inkt heeft andere uithardingseisen.",
	"bcm":        "BCM (Billion Cubic Microns) is het celvolume van de aniloxwals.",
	"rasterwals": "Het type rasterwals bepaalt de inktoverdracht. Een hogere transfer betekent meer inkt en dus meer UV-vermogen nodig.",
	"volume":     "Het specifieke volume van de rasterwals dat de hoeveelheid inkt bepaalt die kan worden overgedragen.",
	"general":    "CleverCuring helpt bij het bepalen van de optimale UV-uitharding instellingen voor flexografisch drukwerk.",
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	if _, err := seed.Run(database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword}); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	srv := &server{
		auth:     newAuthService(database, cfg.SessionSecret),
		db:       database,
		curing:   curing.New(cfg.AniloxDocPath),
		settings: settings.NewStore(cfg.SettingsPath),
	}

	r := chi.NewRouter()
	r.Use(srv.authMiddleware)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Get("/", srv.handleCalculator)
	r.Get("/login", srv.handleLoginForm)
	r.Post("/login", srv.handleLoginSubmit)
	r.Post("/logout", srv.handleLogout)
	r.Post("/berekenen", srv.handleCalculate)
	r.Post("/opslaan", srv.handleSave)
	r.Get("/historie", srv.handleHistoryList)
	r.Get("/historie/{id}", srv.handleHistoryDetail)
	r.Get("/historie/{id}/tekst", srv.handleHistoryText)
	r.Get("/specificaties", srv.handleSpecifications)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(email, password)
	if err != nil {
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		s.renderTemplate(w, "login.html", loginViewData{baseViewData: baseViewData{ErrorMessage: "Ongeldige inloggegevens. Probeer het opnieuw."}})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	selection := calcFormValues{
		Substraat:      q.Get("substraat"),
		Inktsoort:      q.Get("inktsoort"),
		RasterwalsType: q.Get("rasterwals_type"),
		Volume:         q.Get("volume"),
	}

	view := s.calculatorView(selection)
	view.ErrorMessage = q.Get("error")
	view.SuccessMessage = q.Get("success")
	s.renderTemplate(w, "calculator.html", view)
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values, err := parseCalcFormValues(r)
	if err != nil {
		s.renderCalculatorError(w, values, err.Error())
		return
	}

	spec, err := s.resolveVolume(values)
	if err != nil {
		s.renderCalculatorError(w, values, err.Error())
		return
	}

	if !curing.ValidBCM(spec.BCM) {
		s.renderCalculatorError(w, values, "BCM waarde moet tussen 0 en 20 liggen.")
		return
	}

	result := s.curing.CalculatePower(
		curing.Substrate(values.Substraat),
		curing.InkType(values.Inktsoort),
		spec.BCM,
		curing.RollerType(values.RasterwalsType),
		values.Volume,
	)

	view := s.calculatorView(values)
	resultView := resultViewData{Result: result}
	resultView.RecommendedPower, resultView.HasRecommended = s.curing.RecommendedPower(spec.BCM)
	view.Result = &resultView
	s.renderTemplate(w, "calculator.html", view)
}

func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	values, err := parseCalcFormValues(r)
	if err != nil {
		http.Redirect(w, r, "/?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}

	spec, err := s.resolveVolume(values)
	if err != nil {
		http.Redirect(w, r, "/?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
		return
	}
	if !curing.ValidBCM(spec.BCM) {
		http.Redirect(w, r, "/?error="+url.QueryEscape("BCM waarde moet tussen 0 en 20 liggen."), http.StatusSeeOther)
		return
	}

	// The stored snapshot is recomputed server side; posted results are never
	// trusted.
	result := s.curing.CalculatePower(
		curing.Substrate(values.Substraat),
		curing.InkType(values.Inktsoort),
		spec.BCM,
		curing.RollerType(values.RasterwalsType),
		values.Volume,
	)

	setting := settings.Setting{
		Substraat:      values.Substraat,
		Inktsoort:      values.Inktsoort,
		RasterwalsType: values.RasterwalsType,
		Volume:         values.Volume,
		BCM:            spec.BCM,
		Vermogen:       result.FinalPower,
		Transfer:       result.TransferValue,
	}
	if err := s.settings.Append(setting); err != nil {
		// A broken settings file must never block the operator.
		log.Printf("failed to append saved setting: %v", err)
	}

	if _, err := s.insertCalculation(values, spec.BCM, result); err != nil {
		log.Printf("failed to record calculation history: %v", err)
	}

	redirect := url.Values{}
	redirect.Set("success", "Instellingen opgeslagen!")
	redirect.Set("substraat", values.Substraat)
	redirect.Set("inktsoort", values.Inktsoort)
	redirect.Set("rasterwals_type", values.RasterwalsType)
	redirect.Set("volume", values.Volume)
	http.Redirect(w, r, "/?"+redirect.Encode(), http.StatusSeeOther)
}

func (s *server) handleSpecifications(w http.ResponseWriter, r *http.Request) {
	view := specificationsViewData{Help: helpTexts}
	for _, roller := range curing.RollerTypes {
		view.Tables = append(view.Tables, rollerTableView{Type: roller, Specs: s.curing.VolumeSpecs(roller)})
	}
	s.renderTemplate(w, "specifications.html", view)
}

// calculatorView builds the calculator page data for a possibly partial
// selection. Unknown fields fall back to the first option so the form always
// renders a volume list that matches the selected rasterwals type.
func (s *server) calculatorView(selection calcFormValues) calculatorViewData {
	if selection.Substraat == "" {
		selection.Substraat = string(curing.Substrates[0])
	}
	if selection.Inktsoort == "" {
		selection.Inktsoort = string(curing.InkTypes[0])
	}

	roller := curing.RollerType(selection.RasterwalsType)
	if len(s.curing.VolumeSpecs(roller)) == 0 {
		roller = curing.RollerTypes[0]
		selection.RasterwalsType = string(roller)
	}
	volumes := s.curing.VolumeSpecs(roller)

	var specInfo *curing.VolumeSpec
	for i := range volumes {
		if volumes[i].Volume == selection.Volume {
			specInfo = &volumes[i]
			break
		}
	}
	if specInfo == nil && len(volumes) > 0 {
		specInfo = &volumes[0]
		selection.Volume = volumes[0].Volume
	}

	view := calculatorViewData{
		Substrates:  curing.Substrates,
		InkTypes:    curing.InkTypes,
		RollerTypes: curing.RollerTypes,
		Selection:   selection,
		Volumes:     volumes,
		SpecInfo:    specInfo,
		Help:        helpTexts,
		Saved:       s.settings.Load(),
	}
	if specInfo != nil {
		view.BCM = specInfo.BCM
	}
	return view
}

func (s *server) renderCalculatorError(w http.ResponseWriter, values calcFormValues, message string) {
	w.WriteHeader(http.StatusBadRequest)
	view := s.calculatorView(values)
	view.ErrorMessage = message
	s.renderTemplate(w, "calculator.html", view)
}

func parseCalcFormValues(r *http.Request) (calcFormValues, error) {
	values := calcFormValues{
		Substraat:      strings.TrimSpace(r.FormValue("substraat")),
		Inktsoort:      strings.TrimSpace(r.FormValue("inktsoort")),
		RasterwalsType: strings.TrimSpace(r.FormValue("rasterwals_type")),
		Volume:         strings.TrimSpace(r.FormValue("volume")),
		Title:          strings.TrimSpace(r.FormValue("title")),
		Notes:          strings.TrimSpace(r.FormValue("notes")),
	}

	if values.Substraat == "" {
		return values, fmt.Errorf("substraat is verplicht")
	}
	if values.Inktsoort == "" {
		return values, fmt.Errorf("inktsoort is verplicht")
	}
	if values.RasterwalsType == "" {
		return values, fmt.Errorf("rasterwals type is verplicht")
	}
	if values.Volume == "" {
		return values, fmt.Errorf("volume is verplicht")
	}

	return values, nil
}

// resolveVolume checks that the submitted volume belongs to the submitted
// rasterwals type and returns its table entry.
func (s *server) resolveVolume(values calcFormValues) (curing.VolumeSpec, error) {
	roller := curing.RollerType(values.RasterwalsType)
	for _, spec := range s.curing.VolumeSpecs(roller) {
		if spec.Volume == values.Volume {
			return spec, nil
		}
	}
	return curing.VolumeSpec{}, fmt.Errorf("ongeldige combinatie van rasterwals type en volume")
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	templates, err := template.ParseFiles(
		"web/templates/layout.html",
		"web/templates/"+page,
	)
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" || r.URL.Path == "/static" || strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthenticated(r *http.Request, auth *authService) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	_, ok := auth.verifySessionValue(cookie.Value)
	return ok
}

package www

import (
	"errors"
	"log"
	"net/http"

	"cvgateway/store"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "cvgateway-session"

// defaultOperator is created on first start so the console is reachable.
const defaultOperator = "admin"

func newSessionStore(secret string) *sessions.CookieStore {
	if secret == "" {
		secret = "cvgateway-default-secret-change-me"
	}
	s := sessions.NewCookieStore([]byte(secret))
	s.Options.HttpOnly = true
	s.Options.SameSite = http.SameSiteLaxMode
	return s
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SetOperatorPassword hashes password and stores it for username, creating
// the operator if needed.
func SetOperatorPassword(db *store.DB, username, password string) error {
	if username == "" || password == "" {
		return errors.New("operator name and password are required")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return db.SetOperatorPassword(username, hash)
}

func (h *Handlers) isAuthenticated(r *http.Request) bool {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return false
	}
	auth, ok := session.Values["authenticated"].(bool)
	return ok && auth
}

func (h *Handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.isAuthenticated(r) {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) ensureDefaultOperator() {
	db := h.engine.DB()
	exists, err := db.OperatorExists()
	if err != nil || exists {
		return
	}
	hash, err := hashPassword(defaultOperator)
	if err != nil {
		return
	}
	if err := db.CreateOperator(defaultOperator, hash); err != nil {
		log.Printf("www: create default operator: %v", err)
		return
	}
	log.Printf("www: created default operator %q; change its password with -set-operator-password", defaultOperator)
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")

	op, err := h.engine.DB().GetOperator(username)
	if err != nil || !checkPassword(op.PasswordHash, password) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = true
	session.Values["username"] = username
	if err := session.Save(r, w); err != nil {
		log.Printf("auth: session save error: %v", err)
		writeError(w, http.StatusInternalServerError, "unable to start session")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"username": username})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = false
	session.Values["username"] = ""
	session.Options.MaxAge = -1
	session.Save(r, w)
	w.WriteHeader(http.StatusNoContent)
}

package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// Auth exists only to attribute solve records to a player, so the whole
// surface is one signed http-only cookie: there is no per-game session
// state to protect and no frontend that needs to read the token payload.

var jwtSigningMethod = jwt.GetSigningMethod("RS256")

const sessionCookie = "session"

type PlayerClaims struct {
	PlayerId int    `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type PlayerInfo struct {
	Username string `json:"username"`
	PlayerId int    `json:"player_id"`
}

// issueSession signs a fresh token for the player and installs it as the
// session cookie.
func issueSession(w http.ResponseWriter, playerId int, username string) error {
	lifetime := config.Jwt.TokenLifetime.Duration
	now := time.Now()
	claims := PlayerClaims{
		playerId,
		username,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString(jwtPrivateKey)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		Value:    token,
		Expires:  now.Add(lifetime),
		Secure:   !config.Development(),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
	return nil
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		MaxAge:   -1,
		Secure:   !config.Development(),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// sessionClaims validates the session cookie against the public key.
func sessionClaims(r *http.Request) (*PlayerClaims, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, err
	}
	token, err := jwt.ParseWithClaims(
		cookie.Value, &PlayerClaims{},
		func(t *jwt.Token) (interface{}, error) { return jwtPublicKey, nil },
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, errors.New("unknown claims type")
	}
	return claims, nil
}

// credentials pulls the url-encoded username/password pair out of a request
// body, applying the bcrypt input cap.
func credentials(r *http.Request) (username, password string, err error) {
	if err = r.ParseForm(); err != nil {
		return
	}
	username = r.FormValue("username")
	password = r.FormValue("password")
	if username == "" || password == "" {
		err = errors.New("body must contain url-encoded username and password")
	} else if len(password) > 72 {
		err = errors.New("password must not exceed 72 bytes")
	}
	return
}

func handleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, err := credentials(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		log.Error(err)
		return
	}
	player, err := pg.CreatePlayer(r.Context(), username, hash)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("username taken"))
		return
	} else if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		log.Error("unable to insert player: ", err)
		return
	}
	if err := issueSession(w, player.PlayerId, player.Username); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error("unable to sign jwt token: ", err)
		return
	}
	if _, err := sendJSON(w, PlayerInfo{player.Username, player.PlayerId}); err != nil {
		log.Error(err)
	}
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, err := credentials(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}
	player, err := pg.GetPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("username unknown"))
		return
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if err := bcrypt.CompareHashAndPassword(
		player.PasswordHash, []byte(password),
	); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err := issueSession(w, player.PlayerId, player.Username); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error("unable to sign jwt token: ", err)
		return
	}
	if _, err := sendJSON(w, PlayerInfo{player.Username, player.PlayerId}); err != nil {
		log.Error(err)
	}
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
}

// handleMe reports who the session belongs to together with their solve
// tally. An expired or missing session gets its cookie cleared here, which
// is the call frontends poll.
func handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims)
	if !ok {
		clearSession(w)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	stats, err := pg.GetPlayerSolveStats(r.Context(), claims.PlayerId)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	stats.Player = PlayerInfo{claims.Username, claims.PlayerId}
	if _, err := sendJSON(w, stats); err != nil {
		log.Error(err)
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

//go:build integration

package accounts_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tonearm/accounts/internal/auth"
	"github.com/tonearm/accounts/internal/validation"
)

type apiResponse struct {
	status int
	body   map[string]any
}

func post(path, body string) apiResponse {
	resp, err := http.Post(env.server.URL+path, "application/json", strings.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	return decode(resp)
}

func getWithToken(path, token string) apiResponse {
	req, err := http.NewRequest(http.MethodGet, env.server.URL+path, nil)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	return decode(resp)
}

func decode(resp *http.Response) apiResponse {
	out := apiResponse{status: resp.StatusCode}
	Expect(json.NewDecoder(resp.Body).Decode(&out.body)).To(Succeed())
	return out
}

const validSignup = `{"username":"test123456","email":"test123456@pm.me","password":"test123456","passwordConfirmation":"test123456"}`

var _ = Describe("Account API", func() {
	BeforeEach(func() {
		env.truncate()
	})

	Describe("signup", func() {
		It("creates the account with the default preference", func() {
			resp := post("/api/users/signup", validSignup)

			Expect(resp.status).To(Equal(http.StatusCreated))
			Expect(resp.body["message"]).To(Equal(auth.MsgUserCreated))
			data, ok := resp.body["data"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(data["token"]).NotTo(BeEmpty())
			Expect(data["id"]).NotTo(BeEmpty())
			Expect(data["preference"]).To(Equal("opus"))

			var hash string
			Expect(env.pool.QueryRow(env.ctx,
				"SELECT password_hash FROM accounts WHERE email = $1", "test123456@pm.me").Scan(&hash)).To(Succeed())
			Expect(hash).To(HavePrefix("$2a$04$"))
			Expect(hash).NotTo(ContainSubstring("test123456"))
		})

		It("rejects a second signup with the same email", func() {
			Expect(post("/api/users/signup", validSignup).status).To(Equal(http.StatusCreated))

			resp := post("/api/users/signup",
				`{"username":"another123","email":"test123456@pm.me","password":"test123456","passwordConfirmation":"test123456"}`)
			Expect(resp.status).To(Equal(http.StatusConflict))
			Expect(resp.body["message"]).To(Equal(auth.MsgDuplicateEmail))
		})

		It("rejects a second signup with the same username", func() {
			Expect(post("/api/users/signup", validSignup).status).To(Equal(http.StatusCreated))

			resp := post("/api/users/signup",
				`{"username":"test123456","email":"other@pm.me","password":"test123456","passwordConfirmation":"test123456"}`)
			Expect(resp.status).To(Equal(http.StatusConflict))
			Expect(resp.body["message"]).To(Equal(auth.MsgDuplicateUsername))
		})

		It("reports the email when both identities collide", func() {
			Expect(post("/api/users/signup", validSignup).status).To(Equal(http.StatusCreated))

			resp := post("/api/users/signup", validSignup)
			Expect(resp.status).To(Equal(http.StatusConflict))
			Expect(resp.body["message"]).To(Equal(auth.MsgDuplicateEmail))
		})

		It("stores exactly one account under concurrent identical signups", func() {
			const workers = 8
			statuses := make(chan int, workers)
			var wg sync.WaitGroup
			for range workers {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					resp, err := http.Post(env.server.URL+"/api/users/signup", "application/json", strings.NewReader(validSignup))
					Expect(err).NotTo(HaveOccurred())
					_ = resp.Body.Close()
					statuses <- resp.StatusCode
				}()
			}
			wg.Wait()
			close(statuses)

			created := 0
			for status := range statuses {
				if status == http.StatusCreated {
					created++
				} else {
					Expect(status).To(Equal(http.StatusConflict))
				}
			}
			Expect(created).To(Equal(1))

			var count int
			Expect(env.pool.QueryRow(env.ctx, "SELECT count(*) FROM accounts").Scan(&count)).To(Succeed())
			Expect(count).To(Equal(1))
		})

		It("reports the first failing rule", func() {
			resp := post("/api/users/signup", `{"email":"bad","username":"abc"}`)
			Expect(resp.status).To(Equal(http.StatusBadRequest))
			Expect(resp.body["message"]).To(Equal(validation.MsgEmailInvalid))
		})
	})

	Describe("signin", func() {
		BeforeEach(func() {
			Expect(post("/api/users/signup", validSignup).status).To(Equal(http.StatusCreated))
		})

		It("issues a token that identifies the account", func() {
			resp := post("/api/users/signin", `{"email":"test123456@pm.me","password":"test123456"}`)
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.body["preference"]).To(Equal("opus"))

			token, ok := resp.body["token"].(string)
			Expect(ok).To(BeTrue())

			me := getWithToken("/api/users/me", token)
			Expect(me.status).To(Equal(http.StatusOK))
			Expect(me.body["id"]).To(Equal(resp.body["id"]))
			Expect(me.body["username"]).To(Equal("test123456"))
			Expect(me.body["email"]).To(Equal("test123456@pm.me"))
		})

		It("answers identically for a wrong password and an unknown email", func() {
			wrong := post("/api/users/signin", `{"email":"test123456@pm.me","password":"wrong-password"}`)
			unknown := post("/api/users/signin", `{"email":"nobody@pm.me","password":"test123456"}`)

			Expect(wrong.status).To(Equal(http.StatusUnauthorized))
			Expect(unknown.status).To(Equal(http.StatusUnauthorized))
			Expect(wrong.body).To(Equal(unknown.body))
			Expect(wrong.body["message"]).To(Equal(auth.MsgInvalidCredentials))
		})
	})
})

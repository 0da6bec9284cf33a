// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonearm Contributors

//go:build integration

package accounts_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/tonearm/accounts/internal/account"
	accountpg "github.com/tonearm/accounts/internal/account/postgres"
)

var _ = Describe("PostgreSQL account store", func() {
	BeforeEach(func() {
		env.truncate()
	})

	newAccount := func(username, email string) *account.Account {
		acc, err := account.NewAccount(username, email, "$2a$04$hash")
		Expect(err).NotTo(HaveOccurred())
		return acc
	}

	It("round-trips an account", func() {
		acc := newAccount("roundtrip", "roundtrip@pm.me")
		Expect(env.store.Create(env.ctx, acc)).To(Succeed())

		found, err := env.store.FindByEmail(env.ctx, "roundtrip@pm.me")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).NotTo(BeNil())
		Expect(found.ID).To(Equal(acc.ID))
		Expect(found.Username).To(Equal("roundtrip"))
		Expect(found.PasswordHash).To(Equal("$2a$04$hash"))
		Expect(found.Preference).To(Equal(account.DefaultPreference))
	})

	It("returns nil for an unknown email", func() {
		found, err := env.store.FindByEmail(env.ctx, "missing@pm.me")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeNil())
	})

	It("maps unique violations to duplicate errors", func() {
		Expect(env.store.Create(env.ctx, newAccount("original", "original@pm.me"))).To(Succeed())

		err := env.store.Create(env.ctx, newAccount("original", "fresh@pm.me"))
		Expect(errors.Is(err, account.ErrDuplicateUsername)).To(BeTrue())

		err = env.store.Create(env.ctx, newAccount("freshname", "original@pm.me"))
		Expect(errors.Is(err, account.ErrDuplicateEmail)).To(BeTrue())

		err = env.store.Create(env.ctx, newAccount("original", "original@pm.me"))
		Expect(errors.Is(err, account.ErrDuplicateEmail)).To(BeTrue())
	})

	It("treats identities as case-sensitive unless folding is enabled", func() {
		Expect(env.store.Create(env.ctx, newAccount("CaseUser", "Case@pm.me"))).To(Succeed())
		Expect(env.store.Create(env.ctx, newAccount("caseuser", "case@pm.me"))).To(Succeed())

		env.truncate()
		folded := accountpg.NewStore(env.pool, account.Folding{CaseInsensitive: true})
		Expect(folded.Create(env.ctx, newAccount("CaseUser", "Case@pm.me"))).To(Succeed())
		err := folded.Create(env.ctx, newAccount("other123", "CASE@pm.me"))
		Expect(errors.Is(err, account.ErrDuplicateEmail)).To(BeTrue())

		found, err := folded.FindByEmail(env.ctx, "case@PM.me")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).NotTo(BeNil())
		Expect(found.Username).To(Equal("CaseUser"))
	})
})

package fixtures

import (
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/samvad-hq/authprobe/pkg/authapi"
)

const passwordLength = 12

// Generator produces random, collision-resistant user data.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator seeds a generator. Seed 0 picks a random seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Username returns a fake user name suffixed with four random digits.
func (g *Generator) Username() string {
	name := strings.ToLower(strings.ReplaceAll(g.faker.Username(), " ", ""))
	return name + strconv.Itoa(g.faker.Number(1000, 9999))
}

// Email returns a fake e-mail address.
func (g *Generator) Email() string { return strings.ToLower(g.faker.Email()) }

// Password returns a 12 character password with every character class.
func (g *Generator) Password() string {
	return g.faker.Password(true, true, true, true, false, passwordLength)
}

// Registration returns a fresh registration request.
func (g *Generator) Registration() authapi.RegistrationRequest {
	return authapi.RegistrationRequest{
		Username: g.Username(),
		Email:    g.Email(),
		Password: g.Password(),
	}
}

// RawRegistration returns the same data as a plain mapping for raw transport calls.
func (g *Generator) RawRegistration() map[string]string {
	r := g.Registration()
	return map[string]string{
		"username": r.Username,
		"email":    r.Email,
		"password": r.Password,
	}
}

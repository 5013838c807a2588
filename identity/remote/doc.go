// Package remote implements identity.Provider against a Better Auth compatible identity service.
package remote

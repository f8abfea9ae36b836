package model

import "github.com/google/uuid"

// profileNamespace scopes derived profile ids to this service. Any stable
// UUID works; it only has to stay fixed so the same externalId always
// derives the same profileId.
var profileNamespace = uuid.MustParse("9b1dc6a0-52f4-4a3e-8f1d-6c07f1f6b2e4")

// DeriveProfileID maps an external id to a stable internal profile id
// (UUIDv5 over the external id in the service namespace).
func DeriveProfileID(externalID string) string {
	return uuid.NewSHA1(profileNamespace, []byte(externalID)).String()
}

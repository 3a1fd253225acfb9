package service

import (
	"strings"

	"shellyboard/internal/core/domain"
)

// Every field resolver is an ordered rule list walked first-match-wins.
// New device families or status fields are added by appending rules, not by
// branching logic.

type entityRule struct {
	domain string
	match  func(objectId string) bool
}

func suffixRule(entityDomain, suffix string) entityRule {
	return entityRule{
		domain: entityDomain,
		match: func(objectId string) bool {
			return strings.HasSuffix(objectId, suffix)
		},
	}
}

func exactRule(entityDomain, name string) entityRule {
	return entityRule{
		domain: entityDomain,
		match: func(objectId string) bool {
			return objectId == name
		},
	}
}

// firstMatch walks rules in priority order and, per rule, entities in group
// order. Matching is case-insensitive on the object id. An optional accept
// predicate can reject a candidate (e.g. no live state), in which case the
// scan continues.
func firstMatch(entities []domain.EntityRecord, rules []entityRule, accept func(domain.EntityRecord) bool) *domain.EntityRecord {
	for _, rule := range rules {
		for i := range entities {
			e := entities[i]
			if e.Domain() != rule.domain {
				continue
			}
			if !rule.match(strings.ToLower(e.ObjectId())) {
				continue
			}
			if accept != nil && !accept(e) {
				continue
			}
			return &e
		}
	}
	return nil
}

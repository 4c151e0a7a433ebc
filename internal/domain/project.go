/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the volunteer project listing model. Records are read-only
// once constructed; the catalog hands out copies.

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProjectType classifies the organisation behind a project.
type ProjectType string

const (
	TypeUMKM                ProjectType = "UMKM"
	TypeNGO                 ProjectType = "NGO"
	TypeDisabilityCommunity ProjectType = "Disability Community"
	TypeSocialEnterprise    ProjectType = "Social Enterprise"
)

// AllProjectTypes lists the known types in display order.
func AllProjectTypes() []ProjectType {
	return []ProjectType{TypeUMKM, TypeNGO, TypeDisabilityCommunity, TypeSocialEnterprise}
}

func (t ProjectType) Valid() bool {
	for _, k := range AllProjectTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// Urgency is the recruiting urgency shown on a listing card.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

func (u Urgency) Valid() bool {
	return u == UrgencyHigh || u == UrgencyMedium || u == UrgencyLow
}

// Contact holds the coordinator details of a project.
type Contact struct {
	Person string `json:"person"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
}

// Project is one social-impact volunteer listing.
// Volunteers may exceed MaxVolunteers; nothing enforces the relation.
type Project struct {
	ID            int         `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Organization  string      `json:"organization"`
	Type          ProjectType `json:"type"`
	Categories    []string    `json:"categories"`
	Impact        string      `json:"impact"`
	Urgency       Urgency     `json:"urgency"`
	Duration      string      `json:"duration"`
	Location      string      `json:"location"`
	NeededSkills  []string    `json:"neededSkills"`
	Benefits      []string    `json:"benefits"`
	Contact       Contact     `json:"contact"`
	Deadline      Date        `json:"deadline"`
	Volunteers    int         `json:"volunteers"`
	MaxVolunteers int         `json:"maxVolunteers"`
	PostedDate    Date        `json:"postedDate"`
	Thumbnail     string      `json:"thumbnail,omitempty"`
}

// Clone returns a deep copy so callers cannot alias the catalog's slices.
func (p Project) Clone() Project {
	c := p
	c.Categories = append([]string(nil), p.Categories...)
	c.NeededSkills = append([]string(nil), p.NeededSkills...)
	c.Benefits = append([]string(nil), p.Benefits...)
	return c
}

// HasCategory reports whether name is one of the project's categories (exact match).
func (p Project) HasCategory(name string) bool {
	for _, c := range p.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// SpotsLeft is MaxVolunteers-Volunteers; negative when over-subscribed.
func (p Project) SpotsLeft() int { return p.MaxVolunteers - p.Volunteers }

// Full reports whether no spots are left.
func (p Project) Full() bool { return p.SpotsLeft() <= 0 }

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct{ time.Time }

const dateLayout = "2006-01-02"

// D builds a Date in UTC.
func D(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

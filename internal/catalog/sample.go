/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"impactstudio/internal/domain"
)

// sample is the built-in project listing. It is never mutated; Sample hands out copies.
var sample = []domain.Project{
	{
		ID:            1,
		Title:         "Batik Artisan Online Store",
		Description:   "Help a family batik workshop move its catalogue online and take orders from outside Java.",
		Organization:  "Batik Sekar Jagad",
		Type:          domain.TypeUMKM,
		Categories:    []string{"Web Developer", "UI/UX Designer"},
		Impact:        "Twelve artisans reach buyers beyond the local market",
		Urgency:       domain.UrgencyHigh,
		Duration:      "3 months",
		Location:      "Yogyakarta",
		NeededSkills:  []string{"React", "Product Photography", "Copywriting"},
		Benefits:      []string{"Certificate of contribution", "Portfolio project", "Batik workshop visit"},
		Contact:       domain.Contact{Person: "Sri Wahyuni", Email: "sri@sekarjagad.id", Phone: "+62 274 555 0101"},
		Deadline:      domain.D(2025, 3, 15),
		Volunteers:    3,
		MaxVolunteers: 5,
		PostedDate:    domain.D(2025, 1, 10),
		Thumbnail:     "thumbnails/batik-store.jpg",
	},
	{
		ID:            2,
		Title:         "Forest Fire Early Warning System",
		Description:   "Build a sensor dashboard that alerts villages about hotspots during the dry season.",
		Organization:  "Borneo Green Watch",
		Type:          domain.TypeNGO,
		Categories:    []string{"Data Analyst", "Web Developer"},
		Impact:        "Earlier evacuation for 40 villages in peatland areas",
		Urgency:       domain.UrgencyHigh,
		Duration:      "6 months",
		Location:      "Palangka Raya, Central Kalimantan",
		NeededSkills:  []string{"Python", "GIS", "IoT"},
		Benefits:      []string{"Field trip", "Mentoring by environmental scientists"},
		Contact:       domain.Contact{Person: "Andreas Lumban", Email: "andreas@borneogreen.org"},
		Deadline:      domain.D(2025, 4, 1),
		Volunteers:    2,
		MaxVolunteers: 4,
		PostedDate:    domain.D(2025, 1, 18),
		Thumbnail:     "thumbnails/fire-warning.jpg",
	},
	{
		ID:            3,
		Title:         "Sign Language Learning App",
		Description:   "Design and prototype a mobile app that teaches Indonesian Sign Language (BISINDO) to hearing families.",
		Organization:  "Komunitas Tuli Bandung",
		Type:          domain.TypeDisabilityCommunity,
		Categories:    []string{"Mobile Developer", "UI/UX Designer"},
		Impact:        "Better communication at home for deaf children",
		Urgency:       domain.UrgencyMedium,
		Duration:      "4 months",
		Location:      "Bandung, West Java",
		NeededSkills:  []string{"Flutter", "Figma", "Video Editing"},
		Benefits:      []string{"BISINDO basic course", "Certificate of contribution"},
		Contact:       domain.Contact{Person: "Rina Kusuma", Email: "rina@tulibandung.or.id", Phone: "+62 22 555 0133"},
		Deadline:      domain.D(2025, 5, 20),
		Volunteers:    1,
		MaxVolunteers: 3,
		PostedDate:    domain.D(2025, 2, 2),
		Thumbnail:     "thumbnails/sign-language.jpg",
	},
	{
		ID:            4,
		Title:         "Coffee Farmer Cooperative Branding",
		Description:   "Create a brand identity and social media plan for a cooperative selling shade-grown coffee from the highland forest edge.",
		Organization:  "Kopi Gayo Lestari",
		Type:          domain.TypeSocialEnterprise,
		Categories:    []string{"Graphic Designer", "Content Writer"},
		Impact:        "Fair prices for 150 smallholder farmers",
		Urgency:       domain.UrgencyLow,
		Duration:      "2 months",
		Location:      "Takengon, Aceh",
		NeededSkills:  []string{"Branding", "Illustrator", "Instagram Marketing"},
		Benefits:      []string{"Coffee tasting trip", "Portfolio project"},
		Contact:       domain.Contact{Person: "Teuku Hasan", Email: "hasan@kopigayo.co.id"},
		Deadline:      domain.D(2025, 3, 30),
		Volunteers:    4,
		MaxVolunteers: 4,
		PostedDate:    domain.D(2025, 1, 25),
		Thumbnail:     "thumbnails/coffee-coop.jpg",
	},
	{
		ID:            5,
		Title:         "Mangrove Restoration Data Portal",
		Description:   "Publish planting records and survival rates of restored mangrove sites as open data.",
		Organization:  "Pesisir Hijau Foundation",
		Type:          domain.TypeNGO,
		Categories:    []string{"Data Analyst", "Web Developer"},
		Impact:        "Transparent reporting to donors and coastal villages",
		Urgency:       domain.UrgencyMedium,
		Duration:      "3 months",
		Location:      "Surabaya, East Java",
		NeededSkills:  []string{"SQL", "Data Visualization", "Go"},
		Benefits:      []string{"Certificate of contribution", "Boat trip to planting sites"},
		Contact:       domain.Contact{Person: "Dewi Lestari", Email: "dewi@pesisirhijau.org", Phone: "+62 31 555 0177"},
		Deadline:      domain.D(2025, 6, 10),
		Volunteers:    0,
		MaxVolunteers: 3,
		PostedDate:    domain.D(2025, 2, 14),
		Thumbnail:     "thumbnails/mangrove.jpg",
	},
	{
		ID:            6,
		Title:         "Accessible Tourism Guide",
		Description:   "Write and photograph an accessibility guide for wheelchair users visiting Jakarta's museums.",
		Organization:  "Difabel Jalan-Jalan",
		Type:          domain.TypeDisabilityCommunity,
		Categories:    []string{"Content Writer", "Photographer"},
		Impact:        "Independent travel for wheelchair users",
		Urgency:       domain.UrgencyLow,
		Duration:      "1 month",
		Location:      "Jakarta",
		NeededSkills:  []string{"Travel Writing", "Photography"},
		Benefits:      []string{"Museum passes", "Published byline"},
		Contact:       domain.Contact{Person: "Yohanes Pratama", Email: "yohanes@difabeljj.id"},
		Deadline:      domain.D(2025, 2, 28),
		Volunteers:    5,
		MaxVolunteers: 4,
		PostedDate:    domain.D(2025, 1, 5),
		Thumbnail:     "thumbnails/accessible-tourism.jpg",
	},
	{
		ID:            7,
		Title:         "Warung Digital Bookkeeping",
		Description:   "Teach small food stall owners to record sales and stock with a simple mobile spreadsheet.",
		Organization:  "Warung Maju Bersama",
		Type:          domain.TypeUMKM,
		Categories:    []string{"Teacher", "Data Analyst"},
		Impact:        "Clearer finances for 30 micro businesses",
		Urgency:       domain.UrgencyMedium,
		Duration:      "6 weeks",
		Location:      "Remote",
		NeededSkills:  []string{"Spreadsheets", "Basic Accounting", "Bahasa Indonesia"},
		Benefits:      []string{"Certificate of contribution", "Flexible schedule"},
		Contact:       domain.Contact{Person: "Budi Santoso", Email: "budi@warungmaju.id", Phone: "+62 812 555 0199"},
		Deadline:      domain.D(2025, 4, 15),
		Volunteers:    6,
		MaxVolunteers: 10,
		PostedDate:    domain.D(2025, 2, 20),
		Thumbnail:     "thumbnails/warung-bookkeeping.jpg",
	},
	{
		ID:            8,
		Title:         "Recycled Plastic Furniture Shop",
		Description:   "Set up an online shop and order tracking for furniture made from collected plastic waste.",
		Organization:  "Rekosistem Kreatif",
		Type:          domain.TypeSocialEnterprise,
		Categories:    []string{"Web Developer", "Social Media"},
		Impact:        "Ten tonnes of plastic diverted from landfill each year",
		Urgency:       domain.UrgencyHigh,
		Duration:      "3 months",
		Location:      "Denpasar, Bali",
		NeededSkills:  []string{"Shopify", "TypeScript", "Photography"},
		Benefits:      []string{"Workshop tour", "Portfolio project"},
		Contact:       domain.Contact{Person: "Made Wirawan", Email: "made@rekosistem.co"},
		Deadline:      domain.D(2025, 5, 1),
		Volunteers:    1,
		MaxVolunteers: 2,
		PostedDate:    domain.D(2025, 3, 1),
		Thumbnail:     "thumbnails/plastic-furniture.jpg",
	},
}

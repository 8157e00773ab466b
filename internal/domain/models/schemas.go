package models

import "devcamper/internal/query"

// Filterable and sortable fields of each entity, keyed by JSON name.

var BootcampSchema = query.Schema{
	Table: "bootcamps",
	Key:   "id",
	Fields: map[string]query.Field{
		"id":                        {Column: "id", Kind: query.KindID},
		"name":                      {Column: "name", Kind: query.KindString},
		"slug":                      {Column: "slug", Kind: query.KindString},
		"description":               {Column: "description", Kind: query.KindString},
		"website":                   {Column: "website", Kind: query.KindString},
		"phone":                     {Column: "phone", Kind: query.KindString},
		"email":                     {Column: "email", Kind: query.KindString},
		"address":                   {Column: "address", Kind: query.KindString},
		"location.formattedAddress": {Column: "location_formatted_address", Kind: query.KindString},
		"location.street":           {Column: "location_street", Kind: query.KindString},
		"location.city":             {Column: "location_city", Kind: query.KindString},
		"location.state":            {Column: "location_state", Kind: query.KindString},
		"location.zipcode":          {Column: "location_zipcode", Kind: query.KindString},
		"location.country":          {Column: "location_country", Kind: query.KindString},
		"careers":                   {Column: "careers", Kind: query.KindList},
		"averageRating":             {Column: "average_rating", Kind: query.KindNumber},
		"averageCost":               {Column: "average_cost", Kind: query.KindNumber},
		"photo":                     {Column: "photo", Kind: query.KindString},
		"housing":                   {Column: "housing", Kind: query.KindBool},
		"jobAssistance":             {Column: "job_assistance", Kind: query.KindBool},
		"jobGuarantee":              {Column: "job_guarantee", Kind: query.KindBool},
		"acceptGi":                  {Column: "accept_gi", Kind: query.KindBool},
		"createdAt":                 {Column: "created_at", Kind: query.KindTime},
		"user":                      {Column: "user_id", Kind: query.KindID},
	},
}

var CourseSchema = query.Schema{
	Table: "courses",
	Key:   "id",
	Fields: map[string]query.Field{
		"id":                   {Column: "id", Kind: query.KindID},
		"title":                {Column: "title", Kind: query.KindString},
		"description":          {Column: "description", Kind: query.KindString},
		"weeks":                {Column: "weeks", Kind: query.KindString},
		"tuition":              {Column: "tuition", Kind: query.KindNumber},
		"minimumSkill":         {Column: "minimum_skill", Kind: query.KindString},
		"scholarshipAvailable": {Column: "scholarship_available", Kind: query.KindBool},
		"createdAt":            {Column: "created_at", Kind: query.KindTime},
		"bootcamp":             {Column: "bootcamp_id", Kind: query.KindID},
		"user":                 {Column: "user_id", Kind: query.KindID},
	},
}

var ReviewSchema = query.Schema{
	Table: "reviews",
	Key:   "id",
	Fields: map[string]query.Field{
		"id":        {Column: "id", Kind: query.KindID},
		"title":     {Column: "title", Kind: query.KindString},
		"text":      {Column: "text", Kind: query.KindString},
		"rating":    {Column: "rating", Kind: query.KindNumber},
		"createdAt": {Column: "created_at", Kind: query.KindTime},
		"bootcamp":  {Column: "bootcamp_id", Kind: query.KindID},
		"user":      {Column: "user_id", Kind: query.KindID},
	},
}

var UserSchema = query.Schema{
	Table: "users",
	Key:   "id",
	Fields: map[string]query.Field{
		"id":        {Column: "id", Kind: query.KindID},
		"name":      {Column: "name", Kind: query.KindString},
		"email":     {Column: "email", Kind: query.KindString},
		"role":      {Column: "role", Kind: query.KindString},
		"createdAt": {Column: "created_at", Kind: query.KindTime},
	},
}

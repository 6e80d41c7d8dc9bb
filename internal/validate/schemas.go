package validate

import (
	"regexp"

	"github.com/tracewell/venuetrace/internal/model"
)

// Patterns shared by the endpoint schemas.
var (
	usernameRe  = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	nameRe      = regexp.MustCompile(`^[A-Za-z][A-Za-z '-]*$`)
	venueCodeRe = regexp.MustCompile(`^[A-Z0-9]{4,8}$`)
	dateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	hasLetterRe = regexp.MustCompile(`[A-Za-z]`)
	hasDigitRe  = regexp.MustCompile(`[0-9]`)
)

var usernameRules = []Rule{
	required("user is required"),
	isString("user must be a string"),
	tag("min=3,max=30", "user must be 3-30 characters"),
	matches(usernameRe, "user may contain only letters, digits and underscores"),
}

var passwordRules = []Rule{
	required("pass is required"),
	isString("pass must be a string"),
	tag("min=8,max=64", "pass must be 8-64 characters"),
	containsBoth("pass must contain at least one letter and one digit", hasLetterRe, hasDigitRe),
}

func personNameRules(field string) []Rule {
	return []Rule{
		required(field + " is required"),
		isString(field + " must be a string"),
		tag("min=1,max=50", field+" must be 1-50 characters"),
		matches(nameRe, field+" may contain only letters, spaces, apostrophes and hyphens"),
	}
}

// Login gates POST /users/login.
var Login = &Schema{
	Name: "login",
	Fields: []Field{
		{Name: "user", Rules: usernameRules},
		{Name: "pass", Rules: []Rule{
			required("pass is required"),
			isString("pass must be a string"),
			tag("min=1,max=64", "pass must be 1-64 characters"),
		}},
	},
}

// Signup gates POST /users/signup.  The type field is restricted to the
// self-assignable roles; admin is never accepted here.
var Signup = &Schema{
	Name: "signup",
	Fields: []Field{
		{Name: "user", Rules: usernameRules},
		{Name: "pass", Rules: passwordRules},
		{Name: "email", Rules: []Rule{
			required("email is required"),
			isString("email must be a string"),
			tag("email,max=254", "email must be a valid email address"),
		}},
		{Name: "given_name", Rules: personNameRules("given_name")},
		{Name: "family_name", Rules: personNameRules("family_name")},
		{Name: "type", Rules: []Rule{
			required("type is required"),
			isString("type must be a string"),
			tag("oneof="+model.RoleUser+" "+model.RoleManager,
				"type must be one of: "+model.RoleUser+", "+model.RoleManager),
		}},
	},
}

// CheckIn gates POST /users/check_in.  The owner is never a field here; it
// comes from the session, and any owner-like key fails the closed-set check.
var CheckIn = &Schema{
	Name: "checkin",
	Fields: []Field{
		{Name: "check_in", Rules: []Rule{
			required("check_in is required"),
			isString("check_in must be a string"),
			matches(venueCodeRe, "check_in must be 4-8 uppercase letters or digits"),
		}},
		{Name: "date", Rules: []Rule{
			required("date is required"),
			isString("date must be a string"),
			matches(dateRe, "date must be YYYY-MM-DD"),
			dateNotFuture("date must not be in the future"),
		}},
		{Name: "time", Rules: []Rule{
			required("time is required"),
			isString("time must be a string"),
			timeOfDay("time must be HH:MM:SS"),
		}},
	},
}

// History gates POST /users/history, which takes no fields at all; any
// present field is unexpected.
var History = &Schema{
	Name:   "history",
	Fields: nil,
}

// Marker gates POST /addmarkers.
var Marker = &Schema{
	Name: "marker",
	Fields: []Field{
		{Name: "long", Rules: []Rule{
			required("long is required"),
			numberBetween(-180, 180, "long must be a number between -180 and 180"),
		}},
		{Name: "lat", Rules: []Rule{
			required("lat is required"),
			numberBetween(-90, 90, "lat must be a number between -90 and 90"),
		}},
	},
}

package dialog

import "testing"

func TestMatchCommand(t *testing.T) {
	cases := []struct {
		in   string
		want command
	}{
		{"/start", cmdStart},
		{"/START", cmdStart},
		{"  /empezar ahora", cmdStart},
		{"/cancel", cmdCancel},
		{"/cancelar", cmdCancel},
		{"/save", cmdSave},
		{"/guardar", cmdSave},
		{"/continue", cmdContinue},
		{"/continuar", cmdContinue},
		{"/search", cmdSearch},
		{"/buscar pollo", cmdSearch},
		{"/preferences", cmdPreferences},
		{"/preferencias", cmdPreferences},
		{"/logout", cmdLogout},
		{"/salir", cmdLogout},
		{"start", cmdNone},
		{"200 g de arroz", cmdNone},
		{"", cmdNone},
	}
	for _, tc := range cases {
		if got := matchCommand(tc.in); got != tc.want {
			t.Fatalf("matchCommand(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseLogin(t *testing.T) {
	u, p, ok := parseLogin("login alice secret")
	if !ok || u != "alice" || p != "secret" {
		t.Fatalf("got %q %q %v", u, p, ok)
	}
	if _, _, ok := parseLogin("LOGIN bob hunter2 extra"); !ok {
		t.Fatal("extra trailing tokens must still be accepted")
	}
	if _, _, ok := parseLogin("acceder maria clave"); !ok {
		t.Fatal("spanish keyword must be accepted")
	}
	if _, _, ok := parseLogin("login alice"); ok {
		t.Fatal("two tokens must not be intercepted")
	}
	if _, _, ok := parseLogin("please login alice secret"); ok {
		t.Fatal("keyword must lead the message")
	}
}

func TestAffirmativeNegative(t *testing.T) {
	for _, s := range []string{"yes", "Si", "sí", "claro", "ok", "1", "true"} {
		if !isAffirmative(s) {
			t.Fatalf("%q should be affirmative", s)
		}
	}
	for _, s := range []string{"no", "Nope", "nunca"} {
		if !isNegative(s) {
			t.Fatalf("%q should be negative", s)
		}
	}
	if isAffirmative("maybe tomorrow") || isNegative("maybe tomorrow") {
		t.Fatal("free text is neither affirmative nor negative")
	}
}

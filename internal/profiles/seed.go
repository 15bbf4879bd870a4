package profiles

// SeedProfileID is the id of the built-in demo profile owned by the mock user.
const SeedProfileID = "dev-1234"

// SeedProfile returns the built-in demo profile.
func SeedProfile() Profile {
	return Profile{
		ID:       SeedProfileID,
		Name:     "Jane Developer",
		Role:     "Full Stack Engineer",
		Location: "Remote",
		AboutMe: "A creative and detail-oriented Full Stack Engineer with a passion for building intuitive and performant web applications. " +
			"Experienced in both front-end and back-end development, with a strong focus on user experience and code quality.",
		ExperienceSummary: "5+ years of experience developing, testing, and deploying web applications. " +
			"Proficient in JavaScript, React, Node.js, and Python. " +
			"Successfully led a project to migrate a legacy system to a modern microservices architecture, resulting in a 30% performance increase.",
		Skills: []string{"React", "TypeScript", "Node.js", "Python", "Docker", "AWS", "SQL", "NoSQL"},
		Tier:   TierFree,
	}
}

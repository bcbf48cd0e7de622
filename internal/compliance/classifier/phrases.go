package classifier

// Message keys for the fixed strings of the gateway. Rule reasons and
// alternatives are keyed by their English text instead.
const (
	KeyBlockedPrefix = "blocked.prefix"
	KeyContactFooter = "blocked.contact"
	KeyApology       = "responder.apology"
	KeyGreeting      = "smalltalk.greeting"
	KeyThanks        = "smalltalk.thanks"
	KeyFarewell      = "smalltalk.farewell"

	KeyEscalationRecorded = "escalation.recorded"
)

// Phrases maps a BCP 47 language code to its translations.
type Phrases map[string]map[string]string

func builtinPhrases() Phrases {
	return Phrases{
		"en": {
			KeyBlockedPrefix: "I'm sorry, I can't help with that request.",
			KeyContactFooter: "If you need this information, a staff member can help you directly. Use \"Contact a human\" to reach the daycare team.",
			KeyApology:       "I'm sorry, something went wrong while answering your question. Please try again later.",
			KeyGreeting:      "Hello! How can I help you today?",
			KeyThanks:        "You're welcome! Let me know if there is anything else I can help with.",
			KeyFarewell:      "Goodbye! Have a great day.",

			KeyEscalationRecorded: "Your request has been recorded. An operator will contact you soon.",
		},
		"fr": {
			KeyBlockedPrefix: "Désolé, je ne peux pas répondre à cette demande.",
			KeyContactFooter: "Si vous avez besoin de cette information, un membre du personnel peut vous aider directement. Utilisez « Contacter une personne » pour joindre l'équipe de la garderie.",
			KeyApology:       "Désolé, une erreur s'est produite lors de la réponse à votre question. Veuillez réessayer plus tard.",
			KeyGreeting:      "Bonjour ! Comment puis-je vous aider aujourd'hui ?",
			KeyThanks:        "Je vous en prie ! N'hésitez pas si vous avez d'autres questions.",
			KeyFarewell:      "Au revoir ! Bonne journée.",

			KeyEscalationRecorded: "Votre demande a été enregistrée. Un membre de l'équipe vous contactera bientôt.",

			ReasonMedical:       "Les informations médicales et de santé concernant un enfant sont protégées et ne peuvent pas être partagées ici.",
			ReasonContact:       "Les coordonnées des familles et des enfants sont privées et ne peuvent pas être partagées ici.",
			ReasonBehavior:      "Le comportement et les activités d'un enfant en particulier ne peuvent pas être abordés ici.",
			ReasonIncident:      "Les rapports d'incident et de blessure concernant un enfant sont confidentiels.",
			ReasonCareRoutine:   "Les détails des soins d'un enfant, comme les siestes, les repas et les changes, ne peuvent pas être partagés ici.",
			ReasonProfiling:     "Il n'est pas permis de comparer ou de profiler des enfants.",
			ReasonPhotos:        "Les photos et vidéos des enfants ne sont pas accessibles par l'assistant.",
			ReasonRoster:        "Les listes de classe et les listes d'enfants sont des informations protégées.",
			ReasonMedication:    "Les informations sur les médicaments d'un enfant sont des données de santé protégées.",
			ReasonStaffSchedule: "Les horaires et informations personnelles du personnel sont privés.",
			ReasonNameReference: "Cette question semble concerner un enfant en particulier. Les informations individuelles sur les enfants ne peuvent pas être partagées ici.",

			AltMedical:       "Veuillez contacter directement la direction de la garderie ou l'éducatrice de votre enfant pour les questions de santé.",
			AltContact:       "Veuillez vous adresser au bureau de la garderie, qui peut transmettre des messages entre les familles.",
			AltBehavior:      "L'éducatrice de votre enfant peut vous parler de sa journée au moment du départ ou via le rapport quotidien.",
			AltIncident:      "Veuillez contacter la direction de la garderie, qui pourra vous présenter tout rapport d'incident concernant votre enfant.",
			AltCareRoutine:   "Le rapport quotidien de l'application indique les siestes, les repas et les notes de soins de votre propre enfant.",
			AltProfiling:     "Chaque enfant se développe à son propre rythme. Prenez rendez-vous avec l'éducatrice pour discuter des progrès de votre enfant.",
			AltPhotos:        "Les photos partagées sont disponibles dans la section Galerie de l'application pour les enfants que vous êtes autorisé à voir.",
			AltRoster:        "Veuillez contacter le bureau de la garderie pour les questions sur la composition des groupes.",
			AltMedication:    "Veuillez vous adresser à la direction de la garderie pour organiser ou revoir la médication de votre enfant.",
			AltStaffSchedule: "Pour connaître les disponibilités générales, veuillez contacter le bureau de la garderie.",
			AltNameReference: "Veuillez vous adresser à l'éducatrice de votre enfant ou à la direction de la garderie pour toute information sur un enfant en particulier.",
		},
		"ar": {
			KeyBlockedPrefix: "عذرًا، لا يمكنني المساعدة في هذا الطلب.",
			KeyContactFooter: "إذا كنت بحاجة إلى هذه المعلومات، يمكن لأحد الموظفين مساعدتك مباشرة. استخدم «التواصل مع شخص» للوصول إلى فريق الحضانة.",
			KeyApology:       "عذرًا، حدث خطأ أثناء الإجابة على سؤالك. يرجى المحاولة لاحقًا.",
			KeyGreeting:      "مرحبًا! كيف يمكنني مساعدتك اليوم؟",
			KeyThanks:        "على الرحب والسعة! أخبرني إذا كان هناك أي شيء آخر.",
			KeyFarewell:      "مع السلامة! أتمنى لك يومًا سعيدًا.",

			KeyEscalationRecorded: "تم تسجيل طلبك. سيتواصل معك أحد الموظفين قريبًا.",
			ReasonMedical:         "المعلومات الصحية والطبية الخاصة بالأطفال محمية ولا يمكن مشاركتها هنا.",
			AltMedical:            "يرجى التواصل مباشرة مع مديرة الحضانة أو معلمة طفلك بشأن المسائل الصحية.",
		},
	}
}
